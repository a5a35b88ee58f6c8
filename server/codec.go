package server

import (
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/vmihailenco/msgpack/v5"
)

const MIMEMsgpack = "application/msgpack"

type StemRequest struct {
	Word string `json:"word" msgpack:"word"`
}

type StemResponse struct {
	Word string `json:"word" msgpack:"word"`
	Stem string `json:"stem" msgpack:"stem"`
}

type BatchRequest struct {
	Words []string `json:"words" msgpack:"words"`
}

type BatchResponse struct {
	Stems []string `json:"stems" msgpack:"stems"`
}

type ErrorResponse struct {
	Error string `json:"error" msgpack:"error"`
}

func isMsgpack(mime string) bool {
	return strings.Contains(strings.ToLower(mime), MIMEMsgpack)
}

// decode reads the body as MessagePack when the request says so, else JSON.
func decode(c *fiber.Ctx, v any) error {
	if isMsgpack(c.Get(fiber.HeaderContentType)) {
		return msgpack.Unmarshal(c.Body(), v)
	}
	return json.Unmarshal(c.Body(), v)
}

// encode answers in MessagePack when the client accepts it, or when it sent
// MessagePack and did not ask for anything else.
func encode(c *fiber.Ctx, status int, v any) error {
	accept := c.Get(fiber.HeaderAccept)
	if isMsgpack(accept) || (accept == "" && isMsgpack(c.Get(fiber.HeaderContentType))) {
		b, err := msgpack.Marshal(v)
		if err != nil {
			return err
		}
		c.Set(fiber.HeaderContentType, MIMEMsgpack)
		return c.Status(status).Send(b)
	}
	return c.Status(status).JSON(v)
}
