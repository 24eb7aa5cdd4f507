package message

// ReadReq 客户端标记已读（notification.read / notification.read_all）
// read_all 时 IDs 忽略。
type ReadReq struct {
	Type     string   `json:"type"`
	IDs      []string `json:"ids,omitempty"`
	PacketID string   `json:"packet_id"` // 可选：客户端匹配 ack
}

// ReadAck 已读回执（server -> client）
type ReadAck struct {
	Type     string `json:"type"`
	PacketID string `json:"packet_id,omitempty"`
	Updated  int64  `json:"updated"` // 本次标记的条数
	Unread   int64  `json:"unread"`  // 标记后剩余未读
}

// NotificationFrame 站内刷新推送（server -> client）
// 同一个 id 可能推多次：聚合后 count 增大、message 重新渲染，客户端按 id 覆盖即可。
type NotificationFrame struct {
	Type    string `json:"type"`
	ID      string `json:"id"`
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// ErrorFrame 处理上行消息失败时回给客户端
type ErrorFrame struct {
	Type     string `json:"type"`
	Message  string `json:"message"`
	PacketID string `json:"packet_id,omitempty"`
}
