package chain

import (
	"fmt"

	"github.com/blocto/solana-go-sdk/rpc"
)

// Commitment 交易确认级别，取值可比较：processed < confirmed < finalized
type Commitment int

const (
	CommitmentUnknown Commitment = iota
	CommitmentProcessed
	CommitmentConfirmed
	CommitmentFinalized
)

func (c Commitment) String() string {
	switch c {
	case CommitmentProcessed:
		return "processed"
	case CommitmentConfirmed:
		return "confirmed"
	case CommitmentFinalized:
		return "finalized"
	default:
		return "unknown"
	}
}

// Reached 当前级别是否已满足 target
func (c Commitment) Reached(target Commitment) bool {
	return c != CommitmentUnknown && c >= target
}

func (c Commitment) toRPC() rpc.Commitment {
	switch c {
	case CommitmentProcessed:
		return rpc.CommitmentProcessed
	case CommitmentFinalized:
		return rpc.CommitmentFinalized
	default:
		return rpc.CommitmentConfirmed
	}
}

// ParseCommitment 兼容节点早期版本的名称（singleGossip 等）
func ParseCommitment(s string) (Commitment, error) {
	switch s {
	case "processed", "recent":
		return CommitmentProcessed, nil
	case "confirmed", "single", "singleGossip":
		return CommitmentConfirmed, nil
	case "finalized", "max", "root":
		return CommitmentFinalized, nil
	default:
		return CommitmentUnknown, fmt.Errorf("unknown commitment %q", s)
	}
}

func commitmentFromRPC(c rpc.Commitment) Commitment {
	switch c {
	case rpc.CommitmentProcessed:
		return CommitmentProcessed
	case rpc.CommitmentConfirmed:
		return CommitmentConfirmed
	case rpc.CommitmentFinalized:
		return CommitmentFinalized
	default:
		return CommitmentUnknown
	}
}
