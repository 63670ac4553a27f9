package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"schoolcomm/client/internal/api"
	"schoolcomm/client/internal/config"
	"schoolcomm/client/internal/session"
	"schoolcomm/client/internal/storage"
	"schoolcomm/client/internal/storage/sqlite"
)

func main() {
	email := flag.String("email", "", "login email (omit to reuse the stored session)")
	password := flag.String("password", "", "login password")
	flag.Parse()

	cfg := config.MustLoad()

	var kv storage.KV = storage.NewMemory()
	if cfg.SessionStorePath != "" {
		store, err := sqlite.New(cfg.SessionStorePath)
		if err != nil {
			log.Fatalf("failed to open session store: %v", err)
		}
		defer store.Close()
		kv = store
	}

	sessions := session.New(kv)
	sessions.HydrateFromStorage()

	client := api.New(cfg.APIBaseURL, sessions)
	client.Fallback = kv

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if *email != "" {
		result, err := api.Auth{Client: client}.Login(ctx, *email, *password)
		if err != nil {
			log.Fatalf("login failed: %v", err)
		}
		sessions.SetSession(&result.User, result.Token)
		log.Printf("[auth] logged in as %s (%s)", result.User.Name, result.User.Role.Slug)
	}

	if !sessions.Authenticated() {
		log.Fatal("no session: pass -email and -password to log in")
	}

	announcements := api.NewAnnouncements(client)
	page, err := announcements.List(ctx, api.AnnouncementQuery{PerPage: 10})
	if err != nil {
		log.Fatalf("failed to list announcements: %v", err)
	}
	fmt.Printf("announcements (page %d/%d, %d total):\n", page.Page, page.LastPage, page.Total)
	for _, a := range page.Items {
		state := "draft"
		if a.Published(time.Now()) {
			state = "published"
		}
		fmt.Printf("  #%d %-40q %s by %s\n", a.ID, a.Title, state, a.Author.Name)
	}

	unread, err := api.Notifications{Client: client}.Badge(ctx)
	if err != nil {
		log.Fatalf("failed to read badge: %v", err)
	}
	fmt.Printf("unread notifications: %d\n", unread)
}
