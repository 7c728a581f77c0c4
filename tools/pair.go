package tools

// OrderPair 把无序的ID对规整成全序形态：低位在前、高位在后。
// ID 是十进制雪花字符串，先比长度再比字典序即数值序。
// 单聊会话唯一键依赖这里：同一对用户无论参数顺序，落库永远只有一行。
func OrderPair(a, b string) (lo, hi string) {
	if LessID(a, b) {
		return a, b
	}
	return b, a
}

// LessID 十进制数值序比较（不含符号、无前导零的前提下成立）。
func LessID(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}
