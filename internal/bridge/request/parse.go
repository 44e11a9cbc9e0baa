// Package request turns untyped boundary arguments into typed start commands.
//
// Only the discriminant (token or workflowId) is mandatory. Every other field
// is extracted permissively: a value of the wrong type is treated as absent.
package request

import (
	"verifybridge/internal/bridge/models"
	dErrors "verifybridge/pkg/domain-errors"
)

const (
	MethodStartVerification             = "startVerification"
	MethodStartVerificationWithWorkflow = "startVerificationWithWorkflow"
)

// ParseStartVerification validates a startVerification call.
func ParseStartVerification(args Args) (models.StartCommand, error) {
	token, ok := args.requiredString("token")
	if !ok {
		return models.StartCommand{}, dErrors.New(dErrors.CodeInvalidArgument, "Token is required")
	}
	return models.NewTokenCommand(token, parseConfiguration(args.optMap("config"))), nil
}

// ParseStartVerificationWithWorkflow validates a startVerificationWithWorkflow call.
func ParseStartVerificationWithWorkflow(args Args) (models.StartCommand, error) {
	workflowID, ok := args.requiredString("workflowId")
	if !ok {
		return models.StartCommand{}, dErrors.New(dErrors.CodeInvalidArgument, "Workflow ID is required")
	}

	cmd := models.NewWorkflowCommand(workflowID, parseConfiguration(args.optMap("config")))
	cmd.VendorData = args.optString("vendorData")
	cmd.Metadata = args.optString("metadata")
	cmd.Contact = parseContactDetails(args.optMap("contactDetails"))
	cmd.Expected = parseExpectedDetails(args.optMap("expectedDetails"))
	return cmd, nil
}

func parseConfiguration(m Args) *models.Configuration {
	if m == nil {
		return nil
	}

	cfg := &models.Configuration{
		FontFamily: m.optString("fontFamily"),
	}
	if code := m.optString("languageCode"); code != nil {
		if lang, ok := models.LanguageFromCode(*code); ok {
			cfg.Language = &lang
		}
	}
	if enabled := m.optBool("loggingEnabled"); enabled != nil {
		cfg.LoggingEnabled = *enabled
	}
	return cfg
}

func parseContactDetails(m Args) *models.ContactDetails {
	if m == nil {
		return nil
	}
	return &models.ContactDetails{
		Email:                  m.optString("email"),
		SendNotificationEmails: m.optBool("sendNotificationEmails"),
		EmailLang:              m.optString("emailLang"),
		Phone:                  m.optString("phone"),
	}
}

func parseExpectedDetails(m Args) *models.ExpectedDetails {
	if m == nil {
		return nil
	}
	return &models.ExpectedDetails{
		FirstName:            m.optString("firstName"),
		LastName:             m.optString("lastName"),
		DateOfBirth:          m.optString("dateOfBirth"),
		Gender:               m.optString("gender"),
		Nationality:          m.optString("nationality"),
		Country:              m.optString("country"),
		Address:              m.optString("address"),
		IdentificationNumber: m.optString("identificationNumber"),
		IPAddress:            m.optString("ipAddress"),
		PortraitImage:        m.optString("portraitImage"),
	}
}
