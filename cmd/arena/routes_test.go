package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/AdamBeresnev/creature-arena/internal/combat"
	"github.com/AdamBeresnev/creature-arena/internal/db"
	"github.com/AdamBeresnev/creature-arena/internal/participant"
	"github.com/AdamBeresnev/creature-arena/internal/service"
	"github.com/AdamBeresnev/creature-arena/internal/store"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) *application {
	t.Helper()

	database, err := sqlx.Connect("sqlite3", db.DSN(filepath.Join(t.TempDir(), "routes.db")))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	require.NoError(t, db.RunMigrations(database.DB, "file://../../migrations"))

	participants := store.NewParticipantStore(database)
	return &application{
		participants: service.NewParticipantService(database, participants),
		battles:      service.NewBattleService(combat.DefaultMoves),
	}
}

func TestParticipantRoutes(t *testing.T) {
	handler := newTestApp(t).routes()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/participants/", strings.NewReader(`{"name":"Ash"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created participant.Participant
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Ash", created.Name)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/participants/"+created.ID.String(), nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/participants/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/participants/00000000-0000-0000-0000-000000000001", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBattleRoute(t *testing.T) {
	handler := newTestApp(t).routes()

	body := `{
		"combatant_1": {"name": "cinder", "type": "fire", "stats": {"hp": 80, "attack": 60, "defense": 45, "instinct": 40, "speed": 55}, "moves": ["Ember"]},
		"combatant_2": {"name": "bramble", "type": "grass", "stats": {"hp": 85, "attack": 55, "defense": 50, "instinct": 40, "speed": 50}, "moves": ["Vine Lash"]}
	}`

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/battles", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Winner int `json:"winner"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, 1, out.Winner, "fire beats grass")

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/battles", strings.NewReader(`{"theme": "lava_bowl"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
