package contract

import "fmt"

// Tag 指令数据的第一个字节，每个操作取值唯一
type Tag uint8

const (
	TagInit                 Tag = 0 // 初始化程序状态账户
	TagInitAccessList       Tag = 1 // 为签名者登记新的访问列表账户
	TagAddToAccessList      Tag = 2 // 向访问列表加入一个公钥
	TagRemoveFromAccessList Tag = 3 // 从访问列表移除一个公钥
	TagUpdateAccessList     Tag = 4 // 整体替换访问列表
)

// Tags 全部合法取值
func Tags() []Tag {
	return []Tag{TagInit, TagInitAccessList, TagAddToAccessList, TagRemoveFromAccessList, TagUpdateAccessList}
}

func (t Tag) Valid() bool {
	return t <= TagUpdateAccessList
}

func (t Tag) String() string {
	switch t {
	case TagInit:
		return "Init"
	case TagInitAccessList:
		return "InitAccessList"
	case TagAddToAccessList:
		return "AddToAccessList"
	case TagRemoveFromAccessList:
		return "RemoveFromAccessList"
	case TagUpdateAccessList:
		return "UpdateAccessList"
	default:
		return fmt.Sprintf("Tag(%d)", uint8(t))
	}
}

// keyCount 该操作携带的公钥数量，-1 表示任意个
func (t Tag) keyCount() int {
	switch t {
	case TagInit, TagInitAccessList:
		return 0
	case TagAddToAccessList, TagRemoveFromAccessList:
		return 1
	default:
		return -1
	}
}
