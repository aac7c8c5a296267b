package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/lectorncf/lector-ncf/internal/entity"
)

// Provider webhooks always get a 200 back. Retried deliveries of a payload
// we cannot handle would only duplicate user-facing errors.

func (h *handlers) handleTwilioWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.logger.Error("webhook.twilio.bad_form", "error", err)
		w.WriteHeader(http.StatusOK)
		return
	}

	from := r.PostFormValue("From")
	numMedia, _ := strconv.Atoi(r.PostFormValue("NumMedia"))
	msg := entity.InboundMessage{
		From:             from,
		To:               r.PostFormValue("To"),
		MessageID:        r.PostFormValue("MessageSid"),
		NumMedia:         numMedia,
		MediaURL:         r.PostFormValue("MediaUrl0"),
		MediaContentType: r.PostFormValue("MediaContentType0"),
		Body:             r.PostFormValue("Body"),
		Provider:         "twilio",
	}

	h.logger.Info("webhook.twilio.received", "from", from, "num_media", numMedia)

	if msg.NumMedia == 0 {
		if h.deps.Sender != nil && from != "" {
			_ = h.deps.Sender.SendText(r.Context(), from, "Por favor envía una foto de la factura. 📸")
		}
		w.WriteHeader(http.StatusOK)
		return
	}

	if err := h.deps.Queue.Enqueue(r.Context(), msg); err != nil {
		h.logger.Error("webhook.twilio.enqueue_failed", "error", err)
	}
	w.WriteHeader(http.StatusOK)
}

// greenAPINotification mirrors the incoming-message webhook shape.
type greenAPINotification struct {
	TypeWebhook string `json:"typeWebhook"`
	IDMessage   string `json:"idMessage"`
	SenderData  struct {
		ChatID string `json:"chatId"`
		Sender string `json:"sender"`
	} `json:"senderData"`
	MessageData struct {
		TypeMessage     string `json:"typeMessage"`
		FileMessageData struct {
			DownloadURL string `json:"downloadUrl"`
			MimeType    string `json:"mimeType"`
			Caption     string `json:"caption"`
		} `json:"fileMessageData"`
		TextMessageData struct {
			TextMessage string `json:"textMessage"`
		} `json:"textMessageData"`
	} `json:"messageData"`
}

func (h *handlers) handleGreenAPIWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		w.WriteHeader(http.StatusOK)
		return
	}

	if err := validateGreenAPIPayload(body); err != nil {
		h.logger.Warn("webhook.greenapi.invalid_payload", "error", err)
		w.WriteHeader(http.StatusOK)
		return
	}

	var n greenAPINotification
	if err := json.Unmarshal(body, &n); err != nil {
		h.logger.Warn("webhook.greenapi.bad_json", "error", err)
		w.WriteHeader(http.StatusOK)
		return
	}

	h.logger.Info("webhook.greenapi.received",
		"type", n.TypeWebhook,
		"chat_id", n.SenderData.ChatID,
		"message_type", n.MessageData.TypeMessage,
	)

	if n.TypeWebhook != "incomingMessageReceived" {
		w.WriteHeader(http.StatusOK)
		return
	}

	msg := entity.InboundMessage{
		From:      n.SenderData.ChatID,
		MessageID: n.IDMessage,
		Provider:  "greenapi",
	}
	if n.MessageData.TypeMessage == "imageMessage" {
		msg.NumMedia = 1
		msg.MediaURL = n.MessageData.FileMessageData.DownloadURL
		msg.MediaContentType = n.MessageData.FileMessageData.MimeType
		msg.Body = n.MessageData.FileMessageData.Caption
	} else {
		msg.Body = n.MessageData.TextMessageData.TextMessage
	}

	if msg.NumMedia == 0 {
		if h.deps.Sender != nil && msg.From != "" {
			_ = h.deps.Sender.SendText(r.Context(), msg.From, "Por favor envía una foto de la factura. 📸")
		}
		w.WriteHeader(http.StatusOK)
		return
	}

	if err := h.deps.Queue.Enqueue(r.Context(), msg); err != nil {
		h.logger.Error("webhook.greenapi.enqueue_failed", "error", err)
	}
	w.WriteHeader(http.StatusOK)
}
