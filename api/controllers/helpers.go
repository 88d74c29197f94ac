package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/swifthaul/swifthaul-backend/api/middleware"
	pkgerrors "github.com/swifthaul/swifthaul-backend/pkg/errors"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

func actorUUID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.ActorIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid actor id")
	}
	return id, nil
}

func partnerUUID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.PartnerIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "partner context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeForbidden, err, "invalid partner id")
	}
	return id, nil
}

func cursorParam(r *http.Request) string {
	return strings.TrimSpace(r.URL.Query().Get("cursor"))
}
