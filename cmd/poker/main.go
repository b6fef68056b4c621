package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/ferminhg/poker-planning/client"
	"github.com/ferminhg/poker-planning/config"
	"github.com/ferminhg/poker-planning/models"
	"github.com/ferminhg/poker-planning/roomsync"
)

func main() {
	cfg := config.Load()
	cfg.SetupLogging()

	roomID := roomsync.NewRoomID()
	if len(os.Args) > 1 {
		roomID = os.Args[1]
	}

	api := client.NewRoomClient(cfg.ServerURL)
	identity := roomsync.NewFileIdentity(cfg.StateDir)
	engine := roomsync.NewEngine(roomID, api, identity, clockwork.NewRealClock())
	engine.SetOnChange(render)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go engine.Run(ctx)

	fmt.Printf("room %s on %s\n", roomID, cfg.ServerURL)
	fmt.Println("commands: join <name> | vote <value> | reveal | new | reset | story <text> | emoji <user-id> <emoji> | leave | quit")

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if done := dispatch(ctx, engine, identity, scanner.Text()); done {
			return
		}
	}
}

func dispatch(ctx context.Context, engine *roomsync.Engine, identity roomsync.Identity, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	cmd, args := fields[0], fields[1:]

	var err error
	switch cmd {
	case "join":
		name := strings.Join(args, " ")
		if name == "" {
			name = identity.UserName()
		}
		var joined bool
		joined, err = engine.Join(ctx, name)
		if err == nil && !joined {
			fmt.Println("room is full")
		}
	case "vote":
		if len(args) != 1 {
			fmt.Println("usage: vote <value>")
			return false
		}
		err = engine.Vote(ctx, args[0])
	case "reveal":
		err = engine.RevealVotes(ctx)
	case "new":
		err = engine.NewRound(ctx)
	case "reset":
		err = engine.ResetVotes(ctx)
	case "story":
		err = engine.UpdateStory(ctx, strings.Join(args, " "))
	case "emoji":
		if len(args) != 2 {
			fmt.Println("usage: emoji <user-id> <emoji>")
			return false
		}
		err = engine.SendEmoji(ctx, args[0], args[1])
	case "leave":
		err = engine.Leave(ctx)
	case "quit", "exit":
		return true
	default:
		fmt.Println("unknown command:", cmd)
	}

	if err != nil {
		log.Error().Err(err).Str("command", cmd).Msg("command failed")
	}
	return false
}

func render(state *models.RoomState) {
	fmt.Printf("--- %s", state.ID)
	if state.CurrentStory != "" {
		fmt.Printf("  story: %s", state.CurrentStory)
	}
	fmt.Printf("  (%d/%d)\n", len(state.Participants), state.MaxParticipants)

	for _, p := range state.Participants {
		card := "·"
		switch {
		case state.VotesRevealed && p.Vote != "":
			card = p.Vote
		case p.HasVoted:
			card = "✔"
		}
		emojis := ""
		for _, ev := range p.ReceivedEmojis {
			emojis += " " + ev.Emoji
		}
		fmt.Printf("  %-20s %-3s%s  [%s]\n", p.Name, card, emojis, p.ID)
	}
}
