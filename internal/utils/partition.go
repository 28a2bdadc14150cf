package utils

import "encoding/binary"

// PartitionOf 按交易签名选择 Kafka 分区，同一签名总落在同一分区。
// 签名本身近似均匀随机，直接取字节折叠，不再额外哈希。
func PartitionOf(sig []byte, partitions int) int32 {
	if partitions <= 1 || len(sig) < 32 {
		return 0
	}
	mod := uint32(partitions)
	if mod&(mod-1) == 0 {
		return int32(binary.LittleEndian.Uint32(sig[28:32]) & (mod - 1))
	}

	var h uint32
	for off := 0; off+4 <= len(sig); off += 4 {
		h ^= binary.LittleEndian.Uint32(sig[off : off+4])
	}
	return int32(h % mod)
}
