package handler

import (
	"roomrelay/internal/app/chat"
	"roomrelay/internal/app/presence"
	"roomrelay/internal/configs"
)

// AppDeps bundles the long-lived components the HTTP handlers need.
type AppDeps struct {
	Hub      *chat.Hub
	Router   *chat.Router
	Registry *presence.Registry
	Config   *configs.AppConfig
}

// NewAppDeps wires the presence registry, the Hub transport and the event router.
func NewAppDeps(cfg *configs.AppConfig) *AppDeps {
	registry := presence.NewRegistry()
	hub := chat.NewHub()

	return &AppDeps{
		Hub:      hub,
		Router:   chat.NewRouter(registry, hub, chat.NewProfanityFilter()),
		Registry: registry,
		Config:   cfg,
	}
}
