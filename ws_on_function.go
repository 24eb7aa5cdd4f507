package notify_sdk

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cydxin/notify-sdk/message"
	"go.uber.org/zap"
)

// 上行消息处理超时，避免慢查询卡住 readPump
const wsHandleTimeout = 5 * time.Second

// bindWsHandlersOnMessage 将 WS 回调从 engine.go 抽出来，避免 engine.go 臃肿。
// 目前只处理已读相关的上行消息，其余类型回 error 帧。
func (e *NotifyEngine) bindWsHandlersOnMessage() {
	e.WsServer.SetOnMessage(func(client *Client, msg []byte) {
		if client == nil {
			return
		}
		var head message.TypeHead
		if err := json.Unmarshal(msg, &head); err != nil {
			e.sendWsError(client.UserID, "invalid message format", "")
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), wsHandleTimeout)
		defer cancel()

		switch head.Type {
		case message.WsTypePing:
			b, _ := json.Marshal(message.TypeHead{Type: message.WsTypePong, PacketID: head.PacketID})
			e.WsServer.SendToUser(client.UserID, b)

		case message.WsTypeRead, message.WsTypeReadAll:
			var req message.ReadReq
			if err := json.Unmarshal(msg, &req); err != nil {
				e.sendWsError(client.UserID, "invalid read request", head.PacketID)
				return
			}
			var (
				n   int64
				err error
			)
			if head.Type == message.WsTypeReadAll {
				n, err = e.NotificationService.MarkAllRead(ctx, client.UserID)
			} else {
				n, err = e.NotificationService.MarkRead(ctx, client.UserID, req.IDs)
			}
			if err != nil {
				e.logger.Error("ws mark read failed", zap.String("user_id", client.UserID), zap.Error(err))
				e.sendWsError(client.UserID, "mark read failed", req.PacketID)
				return
			}
			unread, err := e.NotificationService.UnreadCount(ctx, client.UserID)
			if err != nil {
				e.logger.Warn("ws unread count failed", zap.String("user_id", client.UserID), zap.Error(err))
			}
			// 回给该用户全部连接，多端的角标一起刷新
			b, _ := json.Marshal(message.ReadAck{
				Type:     message.WsTypeReadAck,
				PacketID: req.PacketID,
				Updated:  n,
				Unread:   unread,
			})
			e.WsServer.SendToUser(client.UserID, b)

		default:
			e.sendWsError(client.UserID, "unsupported message type: "+head.Type, head.PacketID)
		}
	})
}

func (e *NotifyEngine) sendWsError(userID, msg, packetID string) {
	b, _ := json.Marshal(message.ErrorFrame{Type: message.WsTypeError, Message: msg, PacketID: packetID})
	e.WsServer.SendToUser(userID, b)
}
