package utils

import (
	"encoding/binary"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"gopkg.in/yaml.v3"
)

func TestPartitionOf(t *testing.T) {
	sig := make([]byte, 64)
	for i := range sig {
		sig[i] = byte(i * 7)
	}
	for _, n := range []int{2, 3, 4, 6, 16, 300} {
		p := PartitionOf(sig, n)
		assert.GreaterOrEqual(t, p, int32(0))
		assert.Less(t, p, int32(n))
		assert.Equal(t, p, PartitionOf(sig, n), "同一签名必须落在同一分区")
	}
	assert.Equal(t, int32(0), PartitionOf(sig, 1))
	assert.Equal(t, int32(0), PartitionOf(sig[:10], 4))
}

func TestPartitionOf_Spread(t *testing.T) {
	seen := make(map[int32]bool)
	for i := 0; i < 64; i++ {
		sig := make([]byte, 64)
		sig[28], sig[5] = byte(i), byte(i*3)
		seen[PartitionOf(sig, 4)] = true
	}
	assert.Len(t, seen, 4)
}

func TestEncodeDecodeEvent(t *testing.T) {
	at := time.UnixMilli(1_700_000_000_000)
	msg, err := NewStepEvent("run-1", "init_program", "sig", "confirmed", "", at)
	require.NoError(t, err)

	data, err := EncodeEvent(EventTypeStep, msg)
	require.NoError(t, err)

	var decoded structpb.Struct
	eventType, err := decodeEvent(data, &decoded)
	require.NoError(t, err)
	assert.Equal(t, EventTypeStep, eventType)
	assert.Equal(t, "init_program", decoded.Fields["step"].GetStringValue())
	assert.Equal(t, float64(at.UnixMilli()), decoded.Fields["at"].GetNumberValue())
	_, hasErr := decoded.Fields["error"]
	assert.False(t, hasErr)

	_, err = decodeEvent([]byte{1}, &decoded)
	assert.Error(t, err)
}

func TestWriteYAMLReport(t *testing.T) {
	type report struct {
		RunID string   `yaml:"run_id"`
		Steps []string `yaml:"steps"`
	}
	path := t.TempDir() + "/out/report.yaml"
	require.NoError(t, WriteYAMLReport(path, report{RunID: "r1", Steps: []string{"a", "b"}}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var got report
	require.NoError(t, yaml.Unmarshal(raw, &got))
	assert.Equal(t, "r1", got.RunID)
	assert.Equal(t, []string{"a", "b"}, got.Steps)
}

// decodeEvent EncodeEvent 的逆过程
func decodeEvent(data []byte, msg proto.Message) (uint32, error) {
	if len(data) < 4 {
		return 0, fmt.Errorf("data too short: %d", len(data))
	}
	return binary.LittleEndian.Uint32(data[:4]), proto.Unmarshal(data[4:], msg)
}
