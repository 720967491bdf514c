package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/accordo-ai/accordo/core/offer"
	"github.com/accordo-ai/accordo/engine"
	"github.com/accordo-ai/accordo/negotiate"
	"github.com/accordo-ai/accordo/store"
)

func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	var (
		configFile = fs.String("config", "", "Path to config JSON file")
		addr       = fs.String("addr", ":8080", "Listen address")
		verbose    = fs.Bool("verbose", false, "Enable debug logging")
	)
	fs.Parse(args)

	setupObserver(*verbose)

	cfg, err := loadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	st, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := buildClient(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to build completion client: %v", err)
	}

	eng, err := engine.New(*cfg, st, client)
	if err != nil {
		log.Fatalf("Failed to create engine: %v", err)
	}

	srv := &http.Server{
		Addr:         *addr,
		Handler:      newRouter(eng),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("accordo listening on %s", *addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed: %v", err)
	}
}

type server struct {
	engine *engine.Engine
}

func newRouter(eng *engine.Engine) http.Handler {
	s := &server{engine: eng}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /deals", s.handleCreateDeal)
	mux.HandleFunc("GET /deals/{id}", s.handleGetDeal)
	mux.HandleFunc("POST /deals/{id}/turns", s.handleTurn)
	mux.HandleFunc("GET /deals/{id}/messages", s.handleListMessages)
	mux.HandleFunc("POST /deals/{id}/reset", s.handleReset)
	return mux
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type createDealRequest struct {
	TargetUnitPrice float64        `json:"target_unit_price"`
	DiscountCeiling float64        `json:"discount_ceiling,omitempty"`
	PaymentTerms    string         `json:"payment_terms,omitempty"`
	RoundLimit      int            `json:"round_limit,omitempty"`
	Mode            store.DealMode `json:"mode,omitempty"`
}

func (s *server) handleCreateDeal(w http.ResponseWriter, r *http.Request) {
	var req createDealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	deal, err := s.engine.StartDeal(r.Context(), offer.Requisition{
		TargetUnitPrice: req.TargetUnitPrice,
		DiscountCeiling: req.DiscountCeiling,
		PaymentTerms:    req.PaymentTerms,
		RoundLimit:      req.RoundLimit,
	}, req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, dealView(deal))
}

func (s *server) handleGetDeal(w http.ResponseWriter, r *http.Request) {
	id, ok := dealID(w, r)
	if !ok {
		return
	}
	deal, err := s.engine.GetDeal(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dealView(deal))
}

type turnRequest struct {
	Message string `json:"message"`
}

type turnResponse struct {
	Reply string    `json:"reply"`
	Deal  any       `json:"deal"`
	Turn  *turnMeta `json:"turn,omitempty"`
}

type turnMeta struct {
	ExtractedOffer *offer.Offer        `json:"extracted_offer,omitempty"`
	Decision       *negotiate.Decision `json:"decision,omitempty"`
	UtilityScore   *float64            `json:"utility_score,omitempty"`
	UsedFallback   bool                `json:"used_fallback"`
}

func (s *server) handleTurn(w http.ResponseWriter, r *http.Request) {
	id, ok := dealID(w, r)
	if !ok {
		return
	}

	var req turnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	res, err := s.engine.ProcessTurn(r.Context(), id, req.Message)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	resp := turnResponse{
		Reply: res.AssistantMessage.Content,
		Deal:  dealView(res.Deal),
	}
	// INSIGHTS mode exposes per-turn decision metadata; CONVERSATION
	// mode returns the reply alone.
	if res.Deal.Mode == store.ModeInsights {
		resp.Turn = &turnMeta{
			ExtractedOffer: res.VendorMessage.ExtractedOffer,
			Decision:       res.AssistantMessage.Decision,
			UtilityScore:   res.AssistantMessage.UtilityScore,
			UsedFallback:   res.UsedFallback,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	id, ok := dealID(w, r)
	if !ok {
		return
	}
	msgs, err := s.engine.ListMessages(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}

func (s *server) handleReset(w http.ResponseWriter, r *http.Request) {
	id, ok := dealID(w, r)
	if !ok {
		return
	}
	deal, err := s.engine.ResetDeal(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dealView(deal))
}

// dealView shapes a deal for API responses.
func dealView(deal *store.Deal) map[string]any {
	return map[string]any{
		"id":         deal.ID.String(),
		"status":     deal.Status,
		"mode":       deal.Mode,
		"round":      deal.Round,
		"phase":      deal.State.Phase,
		"preference": deal.State.VendorPreference,
		"created_at": deal.CreatedAt,
		"updated_at": deal.UpdatedAt,
	}
}

func dealID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid deal id")
		return uuid.UUID{}, false
	}
	return id, true
}

func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrDealNotFound):
		writeError(w, http.StatusNotFound, "deal not found")
	case errors.Is(err, engine.ErrDealTerminal):
		writeError(w, http.StatusConflict, "deal is already closed")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
