package contract

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"sort"

	"github.com/near/borsh-go"

	"pam-client-sol/internal/pkg/types"
)

// ProgramData 程序状态账户内容：用户 -> 访问列表账户
type ProgramData struct {
	UserAccessLists map[types.Pubkey]types.Pubkey
}

// 链上为 borsh 编码的 HashMap<[u8;32],[u8;32]>，与按 key 排序的 Vec<(K,V)> 字节一致
type accessListEntry struct {
	User       types.Pubkey
	AccessList types.Pubkey
}

type programDataWire struct {
	Entries []accessListEntry
}

const entrySize = 2 * types.PubkeySize

var ErrStateTooShort = errors.New("program data account too short")

// DecodeProgramData 解析状态账户。账户按固定大小分配，编码之后的字节全为 0，解析时忽略
func DecodeProgramData(raw []byte) (*ProgramData, error) {
	if len(raw) < 4 {
		return nil, fmt.Errorf("%w: got %d bytes", ErrStateTooShort, len(raw))
	}
	count := uint64(binary.LittleEndian.Uint32(raw[:4]))
	need := 4 + count*entrySize
	if need > uint64(len(raw)) {
		return nil, fmt.Errorf("%w: %d entries need %d bytes, got %d", ErrStateTooShort, count, need, len(raw))
	}

	var wire programDataWire
	if err := borsh.Deserialize(&wire, raw[:need]); err != nil {
		return nil, fmt.Errorf("borsh decode program data: %w", err)
	}

	data := &ProgramData{UserAccessLists: make(map[types.Pubkey]types.Pubkey, len(wire.Entries))}
	for _, e := range wire.Entries {
		data.UserAccessLists[e.User] = e.AccessList
	}
	return data, nil
}

// EncodeProgramData 按 key 升序编码，结果与链上序列化一致
func EncodeProgramData(data *ProgramData) ([]byte, error) {
	wire := programDataWire{Entries: make([]accessListEntry, 0, len(data.UserAccessLists))}
	for user, list := range data.UserAccessLists {
		wire.Entries = append(wire.Entries, accessListEntry{User: user, AccessList: list})
	}
	sort.Slice(wire.Entries, func(i, j int) bool {
		return bytes.Compare(wire.Entries[i].User[:], wire.Entries[j].User[:]) < 0
	})
	return borsh.Serialize(wire)
}

// AccessListOf 查询用户登记的访问列表账户
func (d *ProgramData) AccessListOf(user types.Pubkey) (types.Pubkey, bool) {
	list, ok := d.UserAccessLists[user]
	return list, ok
}

// DecodeAccessList 访问列表账户为连续的 32 字节公钥，全 0 槽位视为空
func DecodeAccessList(raw []byte) ([]types.Pubkey, error) {
	if len(raw)%types.PubkeySize != 0 {
		return nil, fmt.Errorf("%w: got %d", ErrPayloadLength, len(raw))
	}
	members := make([]types.Pubkey, 0)
	for off := 0; off < len(raw); off += types.PubkeySize {
		var k types.Pubkey
		copy(k[:], raw[off:off+types.PubkeySize])
		if k.IsZero() {
			continue
		}
		members = append(members, k)
	}
	return members, nil
}

// EncodeAccessList 将成员写入 space 字节的账户镜像，剩余部分补 0
func EncodeAccessList(members []types.Pubkey, space int) ([]byte, error) {
	need := len(members) * types.PubkeySize
	if need > space {
		return nil, fmt.Errorf("access list of %d members needs %d bytes, account has %d", len(members), need, space)
	}
	buf := make([]byte, space)
	for i, m := range members {
		copy(buf[i*types.PubkeySize:], m[:])
	}
	return buf, nil
}

var (
	ErrZeroMember      = errors.New("access list member is the zero key")
	ErrDuplicateMember = errors.New("duplicate access list member")
)

// CheckMembers 全 0 公钥在访问列表中表示空槽位，不能作为成员；成员不可重复
func CheckMembers(members []types.Pubkey) error {
	seen := make(map[types.Pubkey]struct{}, len(members))
	for i, m := range members {
		if m.IsZero() {
			return fmt.Errorf("%w: index %d", ErrZeroMember, i)
		}
		if _, ok := seen[m]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateMember, m)
		}
		seen[m] = struct{}{}
	}
	return nil
}
