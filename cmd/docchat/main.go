// Command docchat is the interactive terminal client for the Smart Doctor
// Assistant backend. It holds the session token in a local database, drives
// the login/registration forms, and renders the conversation transcript.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/GitGautamHub/smart-doctor-cli/internal/api"
	"github.com/GitGautamHub/smart-doctor-cli/internal/auth"
	"github.com/GitGautamHub/smart-doctor-cli/internal/chat"
	"github.com/GitGautamHub/smart-doctor-cli/internal/config"
	"github.com/GitGautamHub/smart-doctor-cli/internal/session"
	"github.com/GitGautamHub/smart-doctor-cli/internal/ui"
)

const version = "1.0.0"

type app struct {
	term *ui.Terminal
	auth *auth.Controller
	chat *chat.Controller
	log  *log.Logger
}

func main() {
	baseURL := flag.String("base-url", "", "backend base URL (overrides API_BASE_URL)")
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("docchat", version)
		return
	}

	cfg := config.Load()
	if *baseURL != "" {
		cfg.APIBaseURL = *baseURL
	}

	logger := log.New(os.Stderr, "[docchat] ", log.LstdFlags)

	dbPath := cfg.SessionDBPath
	if dbPath == "" {
		p, err := session.DefaultPath()
		if err != nil {
			logger.Fatalf("resolve session path: %v", err)
		}
		dbPath = p
	}
	store, err := session.Open(dbPath)
	if err != nil {
		logger.Fatalf("open session store: %v", err)
	}
	defer store.Close()

	client := api.New(cfg.APIBaseURL, cfg.HTTPTimeout)
	a := &app{
		term: ui.New(os.Stdin, os.Stdout),
		auth: auth.NewController(client, store, logger),
		chat: chat.NewController(client, store, logger),
		log:  logger,
	}
	a.run(context.Background(), store)
}

// run is the main loop: resume a stored session if one works, otherwise
// offer the auth menu, then hand off to the chat loop until logout or quit.
func (a *app) run(ctx context.Context, store *session.Store) {
	token, err := store.Token()
	if err != nil {
		a.log.Printf("load session: %v", err)
	}
	if token != "" {
		if err := a.chat.Bootstrap(ctx, token); err != nil {
			a.term.Notice("Stored session is no longer valid. Please log in again.")
		}
	}

	for {
		if !a.chat.LoggedIn() {
			if quit := a.authMenu(ctx); quit {
				return
			}
			continue
		}
		if quit := a.chatLoop(ctx); quit {
			return
		}
	}
}

// authMenu shows the logged-out options. Returns true when the user quits.
func (a *app) authMenu(ctx context.Context) bool {
	a.term.ClearScreen()
	a.term.Title("Smart Doctor Assistant")

	form := a.auth.Form()
	if form.Notice != "" {
		a.term.Successf("%s", form.Notice)
	}
	if form.Error != "" {
		a.term.Errorf("%s", form.Error)
	}

	choice, err := a.term.ReadLine("[1] Log in  [2] Register  [3] Quit > ")
	if err != nil {
		return true
	}
	switch strings.TrimSpace(choice) {
	case "1":
		a.login(ctx)
	case "2":
		a.register(ctx)
	case "3", "q", "quit":
		return true
	}
	return false
}

func (a *app) login(ctx context.Context) {
	if a.auth.Form().Mode != auth.ModeLogin {
		a.auth.ToggleMode()
	}

	email, err := a.term.ReadLine("Email: ")
	if err != nil {
		return
	}
	password, err := a.term.ReadPassword("Password: ")
	if err != nil {
		return
	}
	a.auth.SetCredentials(email, password)

	token, err := a.auth.Submit(ctx)
	if err != nil || token == "" {
		return
	}
	if err := a.chat.Bootstrap(ctx, token); err != nil {
		a.term.Errorf("Could not load your session: %v", err)
	}
}

func (a *app) register(ctx context.Context) {
	if a.auth.Form().Mode != auth.ModeRegister {
		a.auth.ToggleMode()
	}

	email, err := a.term.ReadLine("Email: ")
	if err != nil {
		return
	}
	password, err := a.term.ReadPassword("Password: ")
	if err != nil {
		return
	}

	role := api.RolePatient
	answer, err := a.term.ReadLine("Role [patient/doctor] (patient): ")
	if err != nil {
		return
	}
	var name, specialty string
	if strings.EqualFold(strings.TrimSpace(answer), api.RoleDoctor) {
		role = api.RoleDoctor
		if name, err = a.term.ReadLine("Doctor name: "); err != nil {
			return
		}
		if specialty, err = a.term.ReadLine("Specialty: "); err != nil {
			return
		}
	}

	a.auth.SetCredentials(email, password)
	a.auth.SetRegistration(role, name, specialty)
	_, _ = a.auth.Submit(ctx)
}

// chatLoop renders the transcript and reads one command or message per
// iteration until logout, quit, or a dead session. Returns true on quit.
func (a *app) chatLoop(ctx context.Context) bool {
	a.render()
	for {
		line, err := a.term.ReadLine("> ")
		if err != nil {
			return true
		}
		text := strings.TrimSpace(line)

		switch text {
		case "":
			continue
		case "/quit":
			return true
		case "/logout":
			a.chat.Logout()
			a.term.Notice("Logged out.")
			return false
		case "/help":
			a.term.ChatHelp(a.doctor())
			continue
		case "/report":
			if !a.doctor() {
				a.term.Notice("Reports are available to doctors only.")
				continue
			}
			if err := a.chat.RequestDailyReport(ctx); err != nil {
				a.log.Printf("report: %v", err)
			}
		default:
			if err := a.chat.Send(ctx, text); err != nil {
				a.log.Printf("send: %v", err)
			}
		}

		if !a.chat.LoggedIn() {
			// the exchange killed the session; the transcript explains
			a.render()
			a.term.Pause()
			return false
		}
		a.render()
	}
}

func (a *app) render() {
	a.term.ClearScreen()
	profile := a.chat.Profile()
	if profile != nil {
		a.term.Title(fmt.Sprintf("Smart Doctor Assistant — %s (%s)", profile.Email, profile.Role))
	} else {
		a.term.Title("Smart Doctor Assistant")
	}
	a.term.ChatHelp(a.doctor())
	fmt.Println()
	a.term.Transcript(a.chat.Messages())
}

func (a *app) doctor() bool {
	p := a.chat.Profile()
	return p != nil && p.Role == api.RoleDoctor
}
