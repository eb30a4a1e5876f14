package http

import (
	"crypto/sha1"
	"crypto/subtle"
	"encoding/hex"
	"encoding/xml"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/aretw0/campusmate/pkg/frontdoor"
)

// Fixed replies for webhook traffic that never reaches the coordinator.
const (
	WeChatUnsupportedText = "学姐现在主要看得懂文字消息哦，直接打字问我吧～"
	WeChatErrorText       = "呜呜，系统好像出了点小故障，学姐我先去看看，你稍等一下下哈~ 🛠️"
)

// maxWeChatBody bounds the XML body; text messages are far smaller.
const maxWeChatBody = 64 << 10

// WeChatMessage is an inbound official-account push.
type WeChatMessage struct {
	XMLName      xml.Name `xml:"xml"`
	ToUserName   string   `xml:"ToUserName"`
	FromUserName string   `xml:"FromUserName"`
	CreateTime   int64    `xml:"CreateTime"`
	MsgType      string   `xml:"MsgType"`
	Content      string   `xml:"Content"`
	Event        string   `xml:"Event"`
	MsgID        int64    `xml:"MsgId"`
}

type cdata struct {
	Value string `xml:",cdata"`
}

// WeChatReply is a passive text reply.
type WeChatReply struct {
	XMLName      xml.Name `xml:"xml"`
	ToUserName   cdata    `xml:"ToUserName"`
	FromUserName cdata    `xml:"FromUserName"`
	CreateTime   int64    `xml:"CreateTime"`
	MsgType      cdata    `xml:"MsgType"`
	Content      cdata    `xml:"Content"`
}

// WeChatSignature is the hex SHA1 of token, timestamp and nonce sorted and concatenated.
func WeChatSignature(token, timestamp, nonce string) string {
	parts := []string{token, timestamp, nonce}
	sort.Strings(parts)
	sum := sha1.Sum([]byte(strings.Join(parts, "")))
	return hex.EncodeToString(sum[:])
}

func (s *Server) validSignature(r *http.Request) bool {
	q := r.URL.Query()
	want := WeChatSignature(s.cfg.WeChatToken, q.Get("timestamp"), q.Get("nonce"))
	return subtle.ConstantTimeCompare([]byte(want), []byte(q.Get("signature"))) == 1
}

// VerifyWeChat handles GET /wechat, the server ownership check.
func (s *Server) VerifyWeChat(w http.ResponseWriter, r *http.Request) {
	if !s.validSignature(r) {
		s.logger.Warn("WeChat: signature check failed")
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, r.URL.Query().Get("echostr"))
}

// WeChat handles POST /wechat. Text messages and subscribe events become turns;
// everything else gets a fixed reply.
func (s *Server) WeChat(w http.ResponseWriter, r *http.Request) {
	if !s.validSignature(r) {
		s.logger.Warn("WeChat: signature check failed")
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	var msg WeChatMessage
	if err := xml.NewDecoder(io.LimitReader(r.Body, maxWeChatBody)).Decode(&msg); err != nil {
		s.logger.Warn("WeChat: invalid message body", "err", err)
		// WeChat retries anything but a 200 "success".
		io.WriteString(w, "success")
		return
	}
	log := s.logger.With("user_id", msg.FromUserName, "msg_type", msg.MsgType)

	var text string
	switch {
	case msg.MsgType == "text":
		text = s.ask(r, log, msg.FromUserName, msg.Content)
	case msg.MsgType == "event" && strings.EqualFold(msg.Event, "subscribe"):
		// An empty utterance yields the welcome message.
		text = s.ask(r, log, msg.FromUserName, "")
	case msg.MsgType == "event":
		io.WriteString(w, "success")
		return
	default:
		text = WeChatUnsupportedText
	}

	reply := WeChatReply{
		ToUserName:   cdata{msg.FromUserName},
		FromUserName: cdata{msg.ToUserName},
		CreateTime:   time.Now().Unix(),
		MsgType:      cdata{"text"},
		Content:      cdata{text},
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	if err := xml.NewEncoder(w).Encode(reply); err != nil {
		log.Error("WeChat: reply encode failed", "err", err)
	}
}

func (s *Server) ask(r *http.Request, log *slog.Logger, userID, text string) string {
	reply, err := s.cfg.Asker.Ask(r.Context(), frontdoor.Request{
		UserID:  userID,
		Text:    text,
		Channel: frontdoor.ChannelWeChat,
	})
	if err != nil {
		log.Error("WeChat: turn failed", "err", err)
		return WeChatErrorText
	}
	return reply.Text
}
