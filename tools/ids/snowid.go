package ids

import (
	"hash/fnv"
	"os"
	"strconv"
	"sync"
	"time"
)

// 雪花ID：41bit 毫秒时间戳 | 10bit 节点 | 12bit 序列。
// 对外一律走十进制字符串形态（不透明ID）；同一节点下严格单调递增。

const (
	nodeBits = 10
	seqBits  = 12

	maxNode = (1 << nodeBits) - 1 // 1023
	seqMask = (1 << seqBits) - 1  // 4095

	nodeShift = seqBits
	tsShift   = nodeBits + seqBits
	tsMask    = (1 << 41) - 1
)

// epochMS 固定纪元 2020-01-01 UTC，改了会撞旧ID
var epochMS = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli()

type snowNode struct {
	mu     sync.Mutex
	nodeID int64
	seq    int64
	lastMS int64
}

var (
	defaultNode *snowNode
	once        sync.Once
)

func node() *snowNode {
	once.Do(func() {
		defaultNode = &snowNode{nodeID: deriveNodeID()}
	})
	return defaultNode
}

// deriveNodeID 未显式配置时用 hostname 哈希兜底，
// 同一容器重启拿到相同节点号，不同副本大概率错开。
func deriveNodeID() int64 {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return 1
	}
	h := fnv.New32a()
	h.Write([]byte(host))
	return int64(h.Sum32()) & maxNode
}

// SetNodeID 配置节点号（0~1023），在 main() 初始化时调用；
// 越界回落到 hostname 派生值。
func SetNodeID(nodeID int64) {
	n := node()
	if nodeID < 0 || nodeID > maxNode {
		nodeID = deriveNodeID()
	}
	n.mu.Lock()
	n.nodeID = nodeID
	n.mu.Unlock()
}

// Generate 生成一个新的雪花ID
func Generate() int64 {
	return node().next()
}

func GenerateString() string {
	return strconv.FormatInt(Generate(), 10)
}

func (n *snowNode) next() int64 {
	n.mu.Lock()
	defer n.mu.Unlock()

	now := nowMS()
	for now < n.lastMS {
		// 时钟回拨，原地等到追平
		time.Sleep(time.Duration(n.lastMS-now) * time.Millisecond)
		now = nowMS()
	}

	if now == n.lastMS {
		n.seq = (n.seq + 1) & seqMask
		if n.seq == 0 {
			// 同毫秒序列用尽，自旋到下一毫秒
			for now <= n.lastMS {
				now = nowMS()
			}
		}
	} else {
		n.seq = 0
	}
	n.lastMS = now

	return ((now - epochMS) & tsMask) << tsShift | n.nodeID << nodeShift | n.seq
}

func nowMS() int64 { return time.Now().UnixMilli() }
