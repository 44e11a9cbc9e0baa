package request

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"verifybridge/internal/bridge/models"
	dErrors "verifybridge/pkg/domain-errors"
)

// ParseSuite covers the permissive boundary parsing: only the discriminant is
// mandatory and wrongly typed optional fields silently disappear.
type ParseSuite struct {
	suite.Suite
}

func TestParseSuite(t *testing.T) {
	suite.Run(t, new(ParseSuite))
}

func (s *ParseSuite) TestStartVerification() {
	s.Run("missing token is invalid argument", func() {
		_, err := ParseStartVerification(Args{})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidArgument))
		s.Equal("Token is required", err.Error())
	})

	s.Run("non-string token is invalid argument", func() {
		_, err := ParseStartVerification(Args{"token": 42.0})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidArgument))
	})

	s.Run("empty token is invalid argument", func() {
		_, err := ParseStartVerification(Args{"token": ""})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidArgument))
	})

	s.Run("token without config", func() {
		cmd, err := ParseStartVerification(Args{"token": "tok-1"})
		s.Require().NoError(err)
		s.Equal(models.StartByToken, cmd.Kind)
		s.Equal("tok-1", cmd.Token)
		s.Empty(cmd.WorkflowID)
		s.Nil(cmd.Configuration)
	})

	s.Run("config is coerced field by field", func() {
		cmd, err := ParseStartVerification(Args{
			"token": "tok-1",
			"config": map[string]any{
				"languageCode":   "pt_br",
				"fontFamily":     "Inter",
				"loggingEnabled": true,
			},
		})
		s.Require().NoError(err)
		s.Require().NotNil(cmd.Configuration)
		s.Require().NotNil(cmd.Configuration.Language)
		s.Equal(models.Language("pt-BR"), *cmd.Configuration.Language)
		s.Equal("Inter", *cmd.Configuration.FontFamily)
		s.True(cmd.Configuration.LoggingEnabled)
	})

	s.Run("unknown language and wrong types resolve to absent", func() {
		cmd, err := ParseStartVerification(Args{
			"token": "tok-1",
			"config": map[string]any{
				"languageCode":   "klingon",
				"fontFamily":     12.0,
				"loggingEnabled": "yes",
			},
		})
		s.Require().NoError(err)
		s.Require().NotNil(cmd.Configuration)
		s.Nil(cmd.Configuration.Language)
		s.Nil(cmd.Configuration.FontFamily)
		s.False(cmd.Configuration.LoggingEnabled)
	})

	s.Run("config of wrong type is absent", func() {
		cmd, err := ParseStartVerification(Args{"token": "tok-1", "config": "dark"})
		s.Require().NoError(err)
		s.Nil(cmd.Configuration)
	})
}

func (s *ParseSuite) TestStartVerificationWithWorkflow() {
	s.Run("missing workflow id is invalid argument", func() {
		_, err := ParseStartVerificationWithWorkflow(Args{"vendorData": "v"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidArgument))
		s.Equal("Workflow ID is required", err.Error())
	})

	s.Run("full payload", func() {
		cmd, err := ParseStartVerificationWithWorkflow(Args{
			"workflowId": "wf-1",
			"vendorData": "user-77",
			"metadata":   `{"plan":"pro"}`,
			"contactDetails": map[string]any{
				"email":                  "a@example.com",
				"sendNotificationEmails": true,
				"emailLang":              "en",
				"phone":                  "+34600000000",
			},
			"expectedDetails": map[string]any{
				"firstName":   "Ada",
				"lastName":    "Lovelace",
				"dateOfBirth": "1815-12-10",
				"country":     "GBR",
			},
		})
		s.Require().NoError(err)
		s.Equal(models.StartByWorkflow, cmd.Kind)
		s.Equal("wf-1", cmd.WorkflowID)
		s.Equal("user-77", *cmd.VendorData)
		s.Equal(`{"plan":"pro"}`, *cmd.Metadata)
		s.Require().NotNil(cmd.Contact)
		s.Equal("a@example.com", *cmd.Contact.Email)
		s.True(*cmd.Contact.SendNotificationEmails)
		s.Require().NotNil(cmd.Expected)
		s.Equal("Ada", *cmd.Expected.FirstName)
		s.Equal("GBR", *cmd.Expected.Country)
		s.Nil(cmd.Expected.Gender)
		s.Nil(cmd.Configuration)
	})

	s.Run("wrongly typed optional fields are omitted", func() {
		cmd, err := ParseStartVerificationWithWorkflow(Args{
			"workflowId":      "wf-1",
			"vendorData":      7.0,
			"metadata":        []any{"x"},
			"contactDetails":  map[string]any{"email": 1.0, "sendNotificationEmails": "true"},
			"expectedDetails": "nope",
		})
		s.Require().NoError(err)
		s.Nil(cmd.VendorData)
		s.Nil(cmd.Metadata)
		s.Require().NotNil(cmd.Contact)
		s.Nil(cmd.Contact.Email)
		s.Nil(cmd.Contact.SendNotificationEmails)
		s.Nil(cmd.Expected)
	})
}
