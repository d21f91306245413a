package controllers

import (
	"log"

	"scholarly/backend/models"
	"scholarly/backend/services"
	"scholarly/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type MediaController struct {
	Media  *services.MediaService
	Logger *log.Logger
}

func NewMediaController(media *services.MediaService, logger *log.Logger) *MediaController {
	return &MediaController{Media: media, Logger: logger}
}

// UploadImage godoc
// @Summary Upload a course image
// @Description Accepts a base64 data URL and stores it in the media bucket
// @Tags media
// @Accept json
// @Produce json
// @Success 200 {object} models.Asset
// @Failure 400 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /course/upload-image [post]
func (mc *MediaController) UploadImage(c *fiber.Ctx) error {
	var input struct {
		Image string `json:"image"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	asset, err := mc.Media.UploadImage(c.UserContext(), input.Image)
	if err != nil {
		return utils.HandleError(c, mc.Logger, err)
	}
	return c.JSON(asset)
}

// @Router /course/remove-image [post]
func (mc *MediaController) RemoveImage(c *fiber.Ctx) error {
	var input struct {
		Image models.Asset `json:"image"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if err := mc.Media.RemoveImage(c.UserContext(), input.Image); err != nil {
		return utils.HandleError(c, mc.Logger, err)
	}
	return utils.OK(c)
}

// VideoUpload godoc
// @Summary Upload a lesson video
// @Tags media
// @Accept multipart/form-data
// @Produce json
// @Param slug path string true "Course slug"
// @Param video formData file true "Video file"
// @Success 200 {object} models.Asset
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /course/video-upload/{slug} [post]
func (mc *MediaController) VideoUpload(c *fiber.Ctx) error {
	header, err := c.FormFile("video")
	if err != nil {
		return utils.BadRequest(c, "No video")
	}
	file, err := header.Open()
	if err != nil {
		return utils.BadRequest(c, "Cannot read video")
	}
	defer file.Close()

	asset, err := mc.Media.UploadVideo(c.UserContext(), utils.CurrentUserID(c), c.Params("slug"), services.VideoUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get(fiber.HeaderContentType),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		return utils.HandleError(c, mc.Logger, err)
	}
	return c.JSON(asset)
}

// @Router /course/video-remove/{slug} [post]
func (mc *MediaController) VideoRemove(c *fiber.Ctx) error {
	var video models.Asset
	if err := c.BodyParser(&video); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if err := mc.Media.RemoveVideo(c.UserContext(), utils.CurrentUserID(c), c.Params("slug"), video); err != nil {
		return utils.HandleError(c, mc.Logger, err)
	}
	return utils.OK(c)
}
