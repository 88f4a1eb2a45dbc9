package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/prolianceltd/taskflow-cli/internal/client/api"
	"github.com/prolianceltd/taskflow-cli/internal/client/config"
	"github.com/prolianceltd/taskflow-cli/internal/client/services"
	"github.com/prolianceltd/taskflow-cli/internal/client/session"
	"github.com/prolianceltd/taskflow-cli/internal/logging"
)

type App struct {
	config *config.Config
	auth   *services.AuthService
	kb     *services.KnowledgeService
	log    logging.Logger
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(c *config.Config, log logging.Logger) (*App, error) {
	app := &App{config: c, log: log, reader: bufio.NewReader(os.Stdin), out: os.Stdout}

	store := session.NewStore(c.TokenDir)

	onUnauthorized := api.WithUnauthorizedHook(func() {
		app.auth.ForceAnonymous()
	})

	authChannel := api.NewChannel(c.AuthBaseURL, c.RequestTimeout, store, log, onUnauthorized)
	contentChannel := api.NewChannel(c.APIBaseURL, c.RequestTimeout, store, log,
		api.WithPublicPathBypass(api.KnowledgePathPrefix+"/"), onUnauthorized)

	app.auth = services.NewAuthService(api.NewAuthClient(authChannel), store, log)
	app.kb = services.NewKnowledgeService(api.NewKnowledgeClient(contentChannel), store, log)

	return app, nil
}

// Run restores the persisted session, loads the shared browse data, and
// blocks in the REPL until the user exits.
func (a *App) Run(ctx context.Context) {
	a.auth.Restore()
	a.kb.LoadInitial(ctx)
	_ = a.kb.LoadArticles(ctx)

	fmt.Fprintln(a.out, "TaskFlow knowledge base (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, bufio.NewScanner(os.Stdin))
}

func (a *App) isLoggedIn() bool {
	return a.auth.State() == services.StateAuthenticated
}

func (a *App) getStatus() string {
	if identity, ok := a.auth.Identity(); ok {
		return fmt.Sprintf("(%s)", identity.DisplayName())
	}
	if a.auth.State() == services.StateOTPPending {
		return "(otp pending)"
	}
	return ""
}
