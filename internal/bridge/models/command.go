package models

// StartKind discriminates the two ways a verification can be started.
type StartKind string

const (
	StartByToken    StartKind = "token"
	StartByWorkflow StartKind = "workflow"
)

// StartCommand is the validated, typed form of an inbound start request.
// Exactly one of Token or WorkflowID is set, matching Kind.
type StartCommand struct {
	Kind          StartKind
	Token         string
	WorkflowID    string
	VendorData    *string
	Metadata      *string
	Contact       *ContactDetails
	Expected      *ExpectedDetails
	Configuration *Configuration
}

// NewTokenCommand builds a start-by-token command.
func NewTokenCommand(token string, cfg *Configuration) StartCommand {
	return StartCommand{Kind: StartByToken, Token: token, Configuration: cfg}
}

// NewWorkflowCommand builds a start-by-workflow command. Optional fields are
// attached by the caller.
func NewWorkflowCommand(workflowID string, cfg *Configuration) StartCommand {
	return StartCommand{Kind: StartByWorkflow, WorkflowID: workflowID, Configuration: cfg}
}

// Configuration tunes the verification UI and engine diagnostics.
type Configuration struct {
	Language       *Language
	FontFamily     *string
	LoggingEnabled bool
}

// ContactDetails is passed to the engine verbatim.
type ContactDetails struct {
	Email                  *string `json:"email,omitempty"`
	SendNotificationEmails *bool   `json:"send_notification_emails,omitempty"`
	EmailLang              *string `json:"email_lang,omitempty"`
	Phone                  *string `json:"phone,omitempty"`
}

// ExpectedDetails is passed to the engine verbatim.
type ExpectedDetails struct {
	FirstName            *string `json:"first_name,omitempty"`
	LastName             *string `json:"last_name,omitempty"`
	DateOfBirth          *string `json:"date_of_birth,omitempty"`
	Gender               *string `json:"gender,omitempty"`
	Nationality          *string `json:"nationality,omitempty"`
	Country              *string `json:"country,omitempty"`
	Address              *string `json:"address,omitempty"`
	IdentificationNumber *string `json:"identification_number,omitempty"`
	IPAddress            *string `json:"ip_address,omitempty"`
	PortraitImage        *string `json:"portrait_image,omitempty"`
}
