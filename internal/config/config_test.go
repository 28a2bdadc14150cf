package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeromicro/go-zero/core/conf"

	"pam-client-sol/internal/consts"
	"pam-client-sol/internal/pkg/types"
)

const minimalYaml = `
logger:
  level: debug
rpc:
  endpoint: http://127.0.0.1:8899
program:
  program_id: 8wmMgLo9xBGUKai7eWxF2ziVNVFagGX9bWDgntbx4ifL
funding:
  airdrop_lamports: 1000000000
`

func TestLoad_Defaults(t *testing.T) {
	var c ClientConfig
	require.NoError(t, conf.LoadFromYamlBytes([]byte(minimalYaml), &c))

	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, "console", c.Log.Format)
	assert.Equal(t, "http://127.0.0.1:8899", c.Rpc.Endpoint)
	assert.Equal(t, "confirmed", c.Rpc.Commitment)
	assert.True(t, c.Rpc.SkipPreflight)
	assert.Equal(t, consts.DefaultConfirmTimeout, c.Rpc.ConfirmTimeout())
	assert.Equal(t, consts.DefaultPollInterval, c.Rpc.PollInterval())
	assert.Equal(t, consts.DefaultBlockhashTTL, c.Rpc.BlockhashTTL())
	assert.Equal(t, uint64(1_000_000_000), c.Funding.AirdropLamports)
	assert.Equal(t, uint64(consts.DefaultAccountLamports), c.Funding.AccountLamports)
	assert.Equal(t, uint64(consts.DefaultDataAccountSpace), c.Funding.DataAccountSpace)
	assert.Equal(t, uint64(consts.DefaultAccessListSpace), c.Funding.AccessListSpace)

	require.NoError(t, c.Validate())
	assert.Equal(t, consts.PamProgram, c.ProgramPubkey())
}

const rentSysvar = "SysvarRent111111111111111111111111111111111"

func validConfig() ClientConfig {
	return ClientConfig{
		Rpc: RpcConfig{
			Endpoint:          consts.DevnetEndpoint,
			Commitment:        "singleGossip",
			ConfirmTimeoutSec: 60,
		},
		Program: ProgramConfig{ProgramID: consts.PamProgramStr},
		Funding: FundingConfig{
			DataAccountSpace: consts.DefaultDataAccountSpace,
			AccessListSpace:  consts.DefaultAccessListSpace,
		},
		AccessList: AccessListConfig{Members: []string{rentSysvar}},
	}
}

func TestValidate(t *testing.T) {
	c := validConfig()
	require.NoError(t, c.Validate())
	assert.Equal(t, []types.Pubkey{types.PubkeyFromBase58(rentSysvar)}, c.MemberPubkeys())

	tests := []struct {
		name   string
		mutate func(c *ClientConfig)
	}{
		{"empty endpoint", func(c *ClientConfig) { c.Rpc.Endpoint = "" }},
		{"unknown commitment", func(c *ClientConfig) { c.Rpc.Commitment = "fast" }},
		{"zero timeout", func(c *ClientConfig) { c.Rpc.ConfirmTimeoutSec = 0 }},
		{"bad program id", func(c *ClientConfig) { c.Program.ProgramID = "not-a-key" }},
		{"zero space", func(c *ClientConfig) { c.Funding.DataAccountSpace = 0 }},
		{"unaligned access list", func(c *ClientConfig) { c.Funding.AccessListSpace = 1000 }},
		{"bad member", func(c *ClientConfig) { c.AccessList.Members = []string{"xyz"} }},
		{"zero key member", func(c *ClientConfig) { c.AccessList.Members = []string{consts.SystemProgramStr} }},
		{"duplicate member", func(c *ClientConfig) { c.AccessList.Members = []string{rentSysvar, consts.PamProgramStr, rentSysvar} }},
		{"members exceed access list", func(c *ClientConfig) {
			c.Funding.AccessListSpace = 32
			c.AccessList.Members = []string{rentSysvar, consts.PamProgramStr}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestLoad_ShippedConfig(t *testing.T) {
	var c ClientConfig
	require.NoError(t, conf.Load("../../etc/pamclient.yaml", &c))
	require.NoError(t, c.Validate())

	assert.Equal(t, consts.DevnetEndpoint, c.Rpc.Endpoint)
	assert.Equal(t, consts.PamProgram, c.ProgramPubkey())
	members := c.MemberPubkeys()
	require.NotEmpty(t, members)
	for _, m := range members {
		assert.False(t, m.IsZero())
	}
}

// 未加引号的纯数字 base58 会被 YAML 解析成数字
func TestLoad_UnquotedNumericKeyRejected(t *testing.T) {
	var c ClientConfig
	err := conf.LoadFromYamlBytes([]byte(`
access_list:
  members:
    - 11111111111111111111111111111111
`), &c)
	if err == nil {
		err = c.Validate()
	}
	assert.Error(t, err)
}
