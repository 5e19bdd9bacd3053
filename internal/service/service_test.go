package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"docchat/internal/domain"
	"docchat/internal/session"
)

type countingInference struct {
	ensured []string
	invoked int
	reply   string
}

func (c *countingInference) ListInstalled(ctx context.Context) ([]string, error) { return nil, nil }
func (c *countingInference) EnsureAvailable(ctx context.Context, model string) error {
	c.ensured = append(c.ensured, model)
	return nil
}
func (c *countingInference) Invoke(ctx context.Context, model string, messages []domain.Message, stream bool) (string, error) {
	c.invoked++
	return c.reply, nil
}
func (c *countingInference) Embed(ctx context.Context, model, text string) ([]float64, error) {
	c.invoked++
	return []float64{1}, nil
}

// echoRunner appends a canned assistant reply, standing in for the full
// orchestrator.
type echoRunner struct {
	reply string
	err   error
	runs  int
}

func (r *echoRunner) RunTurn(ctx context.Context, state *domain.ConversationState) error {
	r.runs++
	if r.err != nil {
		return r.err
	}
	state.Append(domain.Message{Role: domain.RoleAssistant, Content: r.reply})
	return nil
}

func newService(runner TurnRunner, inf domain.Inference) *ChatService {
	store := session.NewStore("system prompt")
	models := Models{Decision: "d", Chat: "c", Embedding: "e", Reranker: "r"}
	return NewChatService(runner, store, inf, models, zap.NewNop())
}

func TestProcessTurn(t *testing.T) {
	runner := &echoRunner{reply: "the answer"}
	svc := newService(runner, &countingInference{})

	answer, err := svc.ProcessTurn(context.Background(), "s1", "what is up?")
	require.NoError(t, err)
	assert.Equal(t, "the answer", answer)
	assert.Equal(t, 1, runner.runs)

	history := svc.History("s1")
	require.Len(t, history, 3)
	assert.Equal(t, domain.RoleSystem, history[0].Role)
	assert.Equal(t, "what is up?", history[1].Content)
	assert.Equal(t, "the answer", history[2].Content)
}

func TestProcessTurn_ExitShortCircuits(t *testing.T) {
	for _, input := range []string{"exit", "  exit  ", "", "   ", "\n"} {
		runner := &echoRunner{reply: "unused"}
		inf := &countingInference{}
		svc := newService(runner, inf)

		answer, err := svc.ProcessTurn(context.Background(), "s1", input)
		require.NoError(t, err)
		assert.Equal(t, goodbyeResponse, answer)
		assert.Zero(t, runner.runs, "input %q must not run a turn", input)
		assert.Zero(t, inf.invoked)
		// The session log stays untouched.
		assert.Len(t, svc.History("s1"), 1)
	}
}

func TestProcessTurn_ExitNeedsExactCommand(t *testing.T) {
	runner := &echoRunner{reply: "about exits"}
	svc := newService(runner, &countingInference{})

	answer, err := svc.ProcessTurn(context.Background(), "s1", "how do I exit vim?")
	require.NoError(t, err)
	assert.Equal(t, "about exits", answer)
	assert.Equal(t, 1, runner.runs)
}

func TestProcessTurn_RunnerErrorPropagates(t *testing.T) {
	runner := &echoRunner{err: errors.New("turn blew up")}
	svc := newService(runner, &countingInference{})

	_, err := svc.ProcessTurn(context.Background(), "s1", "hello")
	assert.Error(t, err)
}

func TestProcessTurn_SessionsAreIsolated(t *testing.T) {
	runner := &echoRunner{reply: "ok"}
	svc := newService(runner, &countingInference{})

	_, err := svc.ProcessTurn(context.Background(), "alice", "first question")
	require.NoError(t, err)

	assert.Len(t, svc.History("alice"), 3)
	assert.Len(t, svc.History("bob"), 1)
}

func TestReset(t *testing.T) {
	runner := &echoRunner{reply: "ok"}
	svc := newService(runner, &countingInference{})

	_, err := svc.ProcessTurn(context.Background(), "s1", "hello")
	require.NoError(t, err)
	require.Len(t, svc.History("s1"), 3)

	svc.Reset("s1")

	history := svc.History("s1")
	require.Len(t, history, 1)
	assert.Equal(t, domain.RoleSystem, history[0].Role)
}

func TestEnsureModelsReady(t *testing.T) {
	inf := &countingInference{}
	svc := newService(&echoRunner{}, inf)

	require.NoError(t, svc.EnsureModelsReady(context.Background()))
	assert.Equal(t, []string{"d", "c", "e", "r"}, inf.ensured)
}
