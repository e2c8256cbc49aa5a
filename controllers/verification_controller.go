// controller/verification_controller.go
package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"verifyproxy/config"
	"verifyproxy/models"
	"verifyproxy/utils"
)

// EmailVerifier classifies one address. Implementations report per-address
// failures inside the result; they do not return errors.
type EmailVerifier interface {
	VerifyEmail(ctx context.Context, address string) *models.VerificationResult
}

type VerificationController struct {
	Verifier        EmailVerifier
	MaxBatchSize    int
	InterProbeDelay time.Duration
	Logger          logrus.FieldLogger

	sleep func(time.Duration)
}

func NewVerificationController(verifier EmailVerifier, cfg *config.Config, logger logrus.FieldLogger) *VerificationController {
	return &VerificationController{
		Verifier:        verifier,
		MaxBatchSize:    cfg.MaxBatchSize,
		InterProbeDelay: cfg.SMTP.InterProbeDelay,
		Logger:          logger,
		sleep:           time.Sleep,
	}
}

// Verify handles POST /verify. The request is already authenticated; the batch
// is classified strictly in order with a fixed pause between addresses.
func (vc *VerificationController) Verify(c *fiber.Ctx) error {
	var request models.VerifyRequest
	if err := json.Unmarshal(c.BodyRaw(), &request); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "emails must be an array of strings")
		}
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid JSON body")
	}

	if err := utils.ValidateBatch(request.Emails, vc.MaxBatchSize); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	started := time.Now()
	ctx := c.UserContext()
	response := models.VerifyResponse{
		Success: true,
		Results: make([]*models.VerificationResult, 0, len(request.Emails)),
	}

	for i, email := range request.Emails {
		if i > 0 && vc.InterProbeDelay > 0 {
			vc.sleep(vc.InterProbeDelay)
		}

		result := vc.verifyOne(ctx, email)
		vc.Logger.WithFields(logrus.Fields{
			"email":  result.Email,
			"result": result.Result,
			"smtp":   result.SMTP,
		}).Debug(result.Reason)

		response.Results = append(response.Results, result)
		response.Counts.Add(result.Result)
	}
	response.Verified = len(response.Results)

	utils.LogEvent("batch_verified", map[string]interface{}{
		"ip":       c.IP(),
		"verified": response.Verified,
		"valid":    response.Counts.Valid,
		"invalid":  response.Counts.Invalid,
		"risky":    response.Counts.Risky,
		"duration": time.Since(started).String(),
	})

	return c.JSON(response)
}

// verifyOne isolates a single address: a panic becomes an unknown/error result.
func (vc *VerificationController) verifyOne(ctx context.Context, email string) (result *models.VerificationResult) {
	defer func() {
		if r := recover(); r != nil {
			utils.LogError("verification_error", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"email": email,
			})
			result = errorResult(email)
		}
	}()

	result = vc.Verifier.VerifyEmail(ctx, email)
	if result == nil {
		utils.LogError("verification_error", errors.New("verifier returned no result"), map[string]interface{}{
			"email": email,
		})
		result = errorResult(email)
	}
	return result
}

func errorResult(email string) *models.VerificationResult {
	return &models.VerificationResult{
		Email:  strings.ToLower(strings.TrimSpace(email)),
		Result: models.ResultUnknown,
		SMTP:   models.SMTPError,
		Reason: utils.ReasonError,
	}
}
