package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/postpilot/internal/queue"
	"github.com/maheshrc27/postpilot/internal/service"
	"github.com/maheshrc27/postpilot/internal/transfer"
	"go.uber.org/zap"
)

type PostHandler struct {
	s        service.PostService
	enqueuer queue.Enqueuer
	logger   *zap.Logger
}

func NewPostHandler(service service.PostService, enqueuer queue.Enqueuer, logger *zap.Logger) *PostHandler {
	return &PostHandler{s: service, enqueuer: enqueuer, logger: logger}
}

func (h *PostHandler) CreatePost(c *fiber.Ctx) error {
	var input transfer.PostCreation
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	post, err := h.s.Schedule(c.UserContext(), GetAccountID(c), &input)
	if err != nil {
		return respondError(c, h.logger, err, "Unable to schedule post")
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

func (h *PostHandler) ListPosts(c *fiber.Ctx) error {
	posts, err := h.s.List(c.UserContext(), GetAccountID(c))
	if err != nil {
		return respondError(c, h.logger, err, "Unable to list posts")
	}
	return c.Status(fiber.StatusOK).JSON(posts)
}

func (h *PostHandler) GetPost(c *fiber.Ctx) error {
	post, err := h.s.PostInfo(c.UserContext(), GetAccountID(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err, "Unable to fetch post")
	}
	return c.Status(fiber.StatusOK).JSON(post)
}

func (h *PostHandler) RequeuePost(c *fiber.Ctx) error {
	post, err := h.s.Requeue(c.UserContext(), GetAccountID(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err, "Unable to requeue post")
	}
	return c.Status(fiber.StatusOK).JSON(post)
}

func (h *PostHandler) AutoCreatePost(c *fiber.Ctx) error {
	var input transfer.AutoCreate
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	keyword := strings.TrimSpace(input.Keyword)
	if keyword == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Keyword is required",
		})
	}

	taskID, err := queue.EnqueueDraft(c.UserContext(), h.enqueuer, queue.DraftPostPayload{
		AccountID: GetAccountID(c),
		Keyword:   keyword,
		Geo:       input.Geo,
	})
	if err != nil {
		return respondError(c, h.logger, err, "Error scheduling draft")
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message": "Draft queued",
		"task_id": taskID,
	})
}
