package dialogflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/auth/credentials"
	dfapi "cloud.google.com/go/dialogflow/apiv2"
	"cloud.google.com/go/dialogflow/apiv2/dialogflowpb"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	intententity "github.com/vadim/supportbot/internal/domain/intent/entity"
)

const (
	defaultLocation     = "global"
	defaultLanguageCode = "en"
	defaultTimeout      = 15 * time.Second
	cloudPlatformScope  = "https://www.googleapis.com/auth/cloud-platform"
	endpointPort        = 443
)

// Client talks to a Dialogflow ES agent. It owns one intents client and one
// sessions client for its whole lifetime; call Shutdown to release them.
type Client struct {
	projectID       string
	location        string
	languageCode    string
	credentialsJSON string
	timeout         time.Duration
	clientOpts      []option.ClientOption

	intents  *dfapi.IntentsClient
	sessions *dfapi.SessionsClient
}

// ClientOption is a function that configures the Client
type ClientOption func(*Client)

// WithLocation sets the agent region, e.g. "europe-west1"
func WithLocation(location string) ClientOption {
	return func(c *Client) {
		if l := strings.TrimSpace(location); l != "" {
			c.location = l
		}
	}
}

// WithLanguageCode sets the language used for queries and intent listing
func WithLanguageCode(code string) ClientOption {
	return func(c *Client) {
		if code != "" {
			c.languageCode = code
		}
	}
}

// WithCredentialsJSON authenticates with a service account key
func WithCredentialsJSON(json string) ClientOption {
	return func(c *Client) {
		c.credentialsJSON = json
	}
}

// WithTimeout bounds every upstream call
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithClientOptions appends raw Google API client options
func WithClientOptions(opts ...option.ClientOption) ClientOption {
	return func(c *Client) {
		c.clientOpts = append(c.clientOpts, opts...)
	}
}

// New creates a new Dialogflow client and dials both underlying services
func New(ctx context.Context, projectID string, opts ...ClientOption) (*Client, error) {
	if projectID == "" {
		return nil, errors.New("dialogflow: project id is required")
	}

	c := &Client{
		projectID:    projectID,
		location:     defaultLocation,
		languageCode: defaultLanguageCode,
		timeout:      defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	dialOpts, err := c.dialOptions()
	if err != nil {
		return nil, err
	}

	c.intents, err = dfapi.NewIntentsClient(ctx, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating intents client: %w", err)
	}

	c.sessions, err = dfapi.NewSessionsClient(ctx, dialOpts...)
	if err != nil {
		c.intents.Close()
		return nil, fmt.Errorf("creating sessions client: %w", err)
	}

	return c, nil
}

func (c *Client) dialOptions() ([]option.ClientOption, error) {
	var opts []option.ClientOption

	if c.credentialsJSON != "" {
		creds, err := credentials.DetectDefault(&credentials.DetectOptions{
			CredentialsJSON: []byte(c.credentialsJSON),
			Scopes:          []string{cloudPlatformScope},
		})
		if err != nil {
			return nil, fmt.Errorf("detect credentials: %w", err)
		}
		opts = append(opts, option.WithAuthCredentials(creds))
	}

	if endpoint := Endpoint(c.location); endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}

	return append(opts, c.clientOpts...), nil
}

// Shutdown closes both gRPC connections
func (c *Client) Shutdown() error {
	var errs []error
	if c.sessions != nil {
		if err := c.sessions.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing sessions client: %w", err))
		}
	}
	if c.intents != nil {
		if err := c.intents.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing intents client: %w", err))
		}
	}
	return errors.Join(errs...)
}

// ListIntents returns every intent of the agent with phrases and responses
func (c *Client) ListIntents(ctx context.Context) ([]intententity.Intent, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	it := c.intents.ListIntents(ctx, &dialogflowpb.ListIntentsRequest{
		Parent:       AgentPath(c.projectID, c.location),
		LanguageCode: c.languageCode,
		IntentView:   dialogflowpb.IntentView_INTENT_VIEW_FULL,
	})

	intents := []intententity.Intent{}
	for {
		pb, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing intents: %w", err)
		}
		intents = append(intents, toIntent(pb))
	}

	return intents, nil
}

// GetIntent fetches one intent by its trailing id. It returns nil, nil when
// the agent has no such intent.
func (c *Client) GetIntent(ctx context.Context, id string) (*intententity.Intent, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	pb, err := c.intents.GetIntent(ctx, &dialogflowpb.GetIntentRequest{
		Name:         IntentPath(c.projectID, c.location, id),
		LanguageCode: c.languageCode,
		IntentView:   dialogflowpb.IntentView_INTENT_VIEW_FULL,
	})
	if status.Code(err) == codes.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting intent %s: %w", id, err)
	}

	intent := toIntent(pb)
	return &intent, nil
}

// DetectIntentOutput is the agent's answer to one utterance
type DetectIntentOutput struct {
	FulfillmentText   string
	IntentName        string
	IntentDisplayName string
	Confidence        float32
}

// DetectIntent sends the user's text to the agent within the given session
func (c *Client) DetectIntent(ctx context.Context, sessionID, text string) (*DetectIntentOutput, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.sessions.DetectIntent(ctx, &dialogflowpb.DetectIntentRequest{
		Session: SessionPath(c.projectID, c.location, sessionID),
		QueryInput: &dialogflowpb.QueryInput{
			Input: &dialogflowpb.QueryInput_Text{
				Text: &dialogflowpb.TextInput{
					Text:         text,
					LanguageCode: c.languageCode,
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("detecting intent: %w", err)
	}

	result := resp.GetQueryResult()
	return &DetectIntentOutput{
		FulfillmentText:   result.GetFulfillmentText(),
		IntentName:        result.GetIntent().GetName(),
		IntentDisplayName: result.GetIntent().GetDisplayName(),
		Confidence:        result.GetIntentDetectionConfidence(),
	}, nil
}

func toIntent(pb *dialogflowpb.Intent) intententity.Intent {
	intent := intententity.Intent{
		Name:            pb.GetName(),
		DisplayName:     pb.GetDisplayName(),
		TrainingPhrases: []string{},
		Messages:        []string{},
	}

	for _, phrase := range pb.GetTrainingPhrases() {
		var sb strings.Builder
		for _, part := range phrase.GetParts() {
			sb.WriteString(part.GetText())
		}
		if sb.Len() > 0 {
			intent.TrainingPhrases = append(intent.TrainingPhrases, sb.String())
		}
	}

	for _, msg := range pb.GetMessages() {
		intent.Messages = append(intent.Messages, msg.GetText().GetText()...)
	}

	return intent
}
