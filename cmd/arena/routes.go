package main

import (
	"net/http"
	"time"

	"github.com/AdamBeresnev/creature-arena/internal/combat"
	"github.com/AdamBeresnev/creature-arena/internal/httputil"
	"github.com/AdamBeresnev/creature-arena/internal/service"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

type application struct {
	tournaments  *service.TournamentService
	entries      *service.EntryService
	matches      *service.MatchService
	participants *service.ParticipantService
	battles      *service.BattleService
	queue        *service.QueueProcessor
}

func (app *application) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	r.Route("/participants", func(r chi.Router) {
		r.Post("/", app.createParticipant)
		r.Get("/{id}", app.getParticipant)
	})

	r.Route("/tournaments", func(r chi.Router) {
		r.Post("/", app.createTournament)
		r.Get("/{id}", app.getTournament)
		r.Post("/{id}/entries", app.registerEntry)
		r.Delete("/{id}/entries/{entryID}", app.withdrawEntry)
		r.Post("/{id}/advance", app.advanceTournament)
	})

	r.Get("/matches/{id}", app.getMatch)

	r.Post("/queue", app.enqueue)
	r.Post("/queue/tick", app.queueTick)

	r.Post("/battles", app.resolveBattle)

	return r
}

func uuidParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		httputil.BadRequest(w, "Invalid "+name, err)
		return uuid.Nil, false
	}
	return id, true
}

func (app *application) createParticipant(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := httputil.DecodeJSON(r, &body); err != nil {
		httputil.BadRequest(w, "Invalid request body", err)
		return
	}

	p, err := app.participants.CreateParticipant(r.Context(), body.Name)
	if err != nil {
		httputil.Error(w, "Failed to create participant", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, p)
}

func (app *application) getParticipant(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	data, err := app.participants.GetParticipant(r.Context(), id)
	if err != nil {
		httputil.Error(w, "Failed to get participant", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, data)
}

func (app *application) createTournament(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name       string    `json:"name"`
		Theme      string    `json:"theme"`
		MaxPlayers int       `json:"max_players"`
		Prize      int       `json:"prize"`
		StartTime  time.Time `json:"start_time"`
	}
	if err := httputil.DecodeJSON(r, &body); err != nil {
		httputil.BadRequest(w, "Invalid request body", err)
		return
	}

	tournament, err := app.tournaments.CreateTournament(r.Context(), service.TournamentInput{
		Name:       body.Name,
		Theme:      body.Theme,
		MaxPlayers: body.MaxPlayers,
		Prize:      body.Prize,
		StartTime:  body.StartTime,
	})
	if err != nil {
		httputil.Error(w, "Failed to create tournament", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, tournament)
}

func (app *application) getTournament(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	data, err := app.tournaments.GetTournamentData(r.Context(), id)
	if err != nil {
		httputil.Error(w, "Failed to get tournament", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, data)
}

func (app *application) registerEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	var body struct {
		ParticipantID uuid.UUID     `json:"participant_id"`
		Roster        combat.Roster `json:"roster"`
	}
	if err := httputil.DecodeJSON(r, &body); err != nil {
		httputil.BadRequest(w, "Invalid request body", err)
		return
	}

	entry, err := app.entries.RegisterEntry(r.Context(), id, body.ParticipantID, body.Roster)
	if err != nil {
		httputil.Error(w, "Failed to register entry", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, entry)
}

func (app *application) withdrawEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	entryID, ok := uuidParam(w, r, "entryID")
	if !ok {
		return
	}

	if err := app.entries.WithdrawEntry(r.Context(), id, entryID); err != nil {
		httputil.Error(w, "Failed to withdraw entry", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) advanceTournament(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	if err := app.tournaments.AdvanceTournamentTick(r.Context(), id); err != nil {
		httputil.Error(w, "Failed to advance tournament", err)
		return
	}

	data, err := app.tournaments.GetTournamentData(r.Context(), id)
	if err != nil {
		httputil.Error(w, "Failed to get tournament", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, data)
}

func (app *application) getMatch(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	data, err := app.matches.GetMatchData(r.Context(), id)
	if err != nil {
		httputil.Error(w, "Failed to get match", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, data)
}

func (app *application) enqueue(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ParticipantID uuid.UUID     `json:"participant_id"`
		Roster        combat.Roster `json:"roster"`
	}
	if err := httputil.DecodeJSON(r, &body); err != nil {
		httputil.BadRequest(w, "Invalid request body", err)
		return
	}

	p, err := app.participants.GetParticipant(r.Context(), body.ParticipantID)
	if err != nil {
		httputil.Error(w, "Failed to get participant", err)
		return
	}

	id, err := app.queue.Enqueue(r.Context(), body.ParticipantID, p.Participant.Rating, body.Roster)
	if err != nil {
		httputil.Error(w, "Failed to enqueue", err)
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, map[string]uuid.UUID{"queue_entry_id": id})
}

func (app *application) queueTick(w http.ResponseWriter, r *http.Request) {
	if err := app.queue.ProcessTick(r.Context()); err != nil {
		httputil.Error(w, "Matchmaking tick failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) resolveBattle(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Combatant1 combat.Member `json:"combatant_1"`
		Combatant2 combat.Member `json:"combatant_2"`
		Theme      string        `json:"theme"`
	}
	if err := httputil.DecodeJSON(r, &body); err != nil {
		httputil.BadRequest(w, "Invalid request body", err)
		return
	}

	out, err := app.battles.ResolveBattle(body.Combatant1, body.Combatant2, body.Theme)
	if err != nil {
		httputil.Error(w, "Failed to resolve battle", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}
