package message

// WS 上行消息类型（client -> server）
const (
	WsTypeRead    = "notification.read"     // 标记指定通知已读
	WsTypeReadAll = "notification.read_all" // 全部已读
	WsTypePing    = "ping"
)

// WS 下行消息类型（server -> client）
const (
	WsTypeNotification = "notification"
	WsTypeReadAck      = "notification.read_ack"
	WsTypePong         = "pong"
	WsTypeError        = "error"
)

// TypeHead 只解析上行消息的 type 与 packet_id
type TypeHead struct {
	Type     string `json:"type"`
	PacketID string `json:"packet_id"`
}
