package server

import (
	"errors"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/oarkflow/porter/batch"
)

func (s *Server) health(c *fiber.Ctx) error {
	st := s.state.Load()
	return c.JSON(fiber.Map{
		"status":   "ok",
		"language": st.cfg.Stemmer.Language,
	})
}

func (s *Server) stem(c *fiber.Ctx) error {
	var req StemRequest
	if err := decode(c, &req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	return s.stemWord(c, req.Word)
}

func (s *Server) stemParam(c *fiber.Ctx) error {
	// Params aliases the request buffer; the word may outlive it in the cache.
	word, err := url.PathUnescape(strings.Clone(c.Params("word")))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid word")
	}
	return s.stemWord(c, word)
}

func (s *Server) stemWord(c *fiber.Ctx, word string) error {
	if word == "" {
		return fiber.NewError(fiber.StatusBadRequest, "word is required")
	}
	st := s.state.Load()
	return encode(c, fiber.StatusOK, StemResponse{Word: word, Stem: st.binder.Stem(word)})
}

func (s *Server) stemBatch(c *fiber.Ctx) error {
	var req BatchRequest
	if err := decode(c, &req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if len(req.Words) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "words is required")
	}
	st := s.state.Load()
	if len(req.Words) > st.cfg.Batch.MaxWords {
		return fiber.NewError(fiber.StatusRequestEntityTooLarge, "too many words")
	}
	stems, err := batch.Stem(c.UserContext(), req.Words, st.binder.Stem, st.cfg.Batch.Workers)
	if err != nil {
		return err
	}
	return encode(c, fiber.StatusOK, BatchResponse{Stems: stems})
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "internal error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code, msg = fe.Code, fe.Message
	} else {
		s.log.Error("request failed", "path", c.Path(), "err", err)
	}
	return encode(c, code, ErrorResponse{Error: msg})
}
