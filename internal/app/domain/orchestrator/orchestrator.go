// Package orchestrator implements the Orchestrator (spec §4.P): the single
// owner of the stage graph for one request, driving Gate → Intent →
// {Filters, Route Mapper} → Requery Decision → Provider → Cuisine Enforcer
// → Post-Filter → Ranker → Response Builder, with progress publishing and a
// detached Assistant generation after the terminal response is persisted.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/shacharon/placesearch/internal/app/domain/assistant"
	"github.com/shacharon/placesearch/internal/app/domain/cuisine"
	"github.com/shacharon/placesearch/internal/app/domain/filters"
	"github.com/shacharon/placesearch/internal/app/domain/gate"
	"github.com/shacharon/placesearch/internal/app/domain/intent"
	"github.com/shacharon/placesearch/internal/app/domain/jobstore"
	"github.com/shacharon/placesearch/internal/app/domain/postfilter"
	"github.com/shacharon/placesearch/internal/app/domain/provider"
	"github.com/shacharon/placesearch/internal/app/domain/ranker"
	"github.com/shacharon/placesearch/internal/app/domain/requery"
	"github.com/shacharon/placesearch/internal/app/domain/response"
	"github.com/shacharon/placesearch/internal/app/domain/routemapper"
	"github.com/shacharon/placesearch/internal/app/domain/wshub"
	"github.com/shacharon/placesearch/internal/app/domain/language"
	"github.com/shacharon/placesearch/internal/app/geo"
	"github.com/shacharon/placesearch/internal/app/models"
	appmetrics "github.com/shacharon/placesearch/internal/app/observability/metrics"
	"github.com/shacharon/placesearch/internal/pkg/cache"
	"github.com/shacharon/placesearch/internal/pkg/config"
)

// Input is one accepted search request, already stripped of transport
// concerns (HTTP body parsing happens one layer up).
type Input struct {
	SessionID    string
	QueryText    string
	UILanguage   models.Language
	UserLocation *orb.Point
	RegionHint   string // client/geo-IP region hint; Intent's regionCandidate still wins when valid
}

// Deps bundles every stage the Orchestrator drives, so the graph itself
// stays a thin, testable function of its dependencies rather than reaching
// for package-level singletons.
type Deps struct {
	Store     jobstore.Store
	Hub       *wshub.Hub
	Gate      *gate.Stage
	Intent    *intent.Stage
	Filters   *filters.Stage
	Mapper    *routemapper.Mapper
	Provider  *provider.Stage
	Cuisine   *cuisine.Stage
	Assistant *assistant.Stage
	Config    *config.Config
	Logger    *zap.Logger
}

// poolRef is the owner-object-local index entry letting a later, soft-filter
// -only request find its predecessor's candidate pool without widening the
// Job Store contract.
type poolRef struct {
	requestID string
	sessionID string
}

// Orchestrator drives the stage graph for every accepted request.
type Orchestrator struct {
	deps Deps

	mu        sync.Mutex
	poolIndex map[string]poolRef
}

// New builds an Orchestrator.
func New(deps Deps) *Orchestrator {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Orchestrator{deps: deps, poolIndex: make(map[string]poolRef)}
}

// Submit accepts a request: it computes the idempotency key, reuses a fresh
// job when one exists, and otherwise creates a new RUNNING job and starts
// the stage graph as a detached goroutine. The returned Job reflects
// whichever of the two happened.
func (o *Orchestrator) Submit(ctx context.Context, in Input) (*models.Job, error) {
	now := time.Now()
	idempotencyKey := computeIdempotencyKey(in)

	if existing, err := o.deps.Store.FindByIdempotencyKey(ctx, idempotencyKey); err == nil && existing != nil {
		if o.isFresh(existing, now) {
			return existing, nil
		}
		// Not fresh: a RUNNING job that isFresh rejected is, by definition,
		// stale — mark it terminal here rather than leaving it to rot, since
		// this dedup lookup is itself a stale-check with its hands already
		// on the job.
		if existing.Status == models.JobRunning {
			if resp, transitioned, err := jobstore.MarkStale(ctx, o.deps.Store, existing); err != nil {
				o.deps.Logger.Error("mark_stale_failed", zap.String("requestId", existing.RequestID), zap.Error(err))
			} else if transitioned {
				o.deps.Hub.Publish(existing.RequestID, wshub.EventTerminal, resp)
			}
		}
	}

	job := &models.Job{
		RequestID:      uuid.NewString(),
		SessionID:      in.SessionID,
		Status:         models.JobRunning,
		CreatedAt:      now,
		UpdatedAt:      now,
		IdempotencyKey: idempotencyKey,
	}
	if err := o.deps.Store.Create(ctx, job); err != nil {
		return nil, err
	}
	appmetrics.RecordJobCreated()

	// The stage graph outlives the HTTP request that triggered it — it is
	// deliberately run against a fresh background context rather than ctx.
	go o.run(context.Background(), job, in)

	return job, nil
}

// isFresh reports whether an existing job can be handed back as-is instead
// of starting a new run, per §4.C/§8's dedup rule.
func (o *Orchestrator) isFresh(job *models.Job, now time.Time) bool {
	if job.Status == models.JobDoneSuccess {
		return now.Sub(job.UpdatedAt) <= o.deps.Config.JobStore.DoneSuccessFreshWindow
	}
	if job.Status == models.JobRunning {
		return !jobstore.IsStale(job, now, o.deps.Config.JobStore.MaxRunningJobAge, o.deps.Hub)
	}
	return false
}

// run executes the full stage graph for a newly created job. It never
// returns an error to its caller — every failure path persists a terminal
// DONE_FAILED job and publishes the terminal event itself.
func (o *Orchestrator) run(ctx context.Context, job *models.Job, in Input) {
	start := time.Now()
	stopHeartbeat := o.startHeartbeat(job.RequestID)
	defer stopHeartbeat()

	defer func() {
		if r := recover(); r != nil {
			o.deps.Logger.Error("orchestrator_panic", zap.String("requestId", job.RequestID), zap.Any("panic", r))
			o.fail(ctx, job, models.ErrSearchFailed, fmt.Sprintf("internal error: %v", r), "", preliminaryLanguageContext(in))
		}
	}()

	o.setStatus(ctx, job, models.JobRunning, 10)

	// A low-confidence preliminary resolve gives the Gate-fail path a
	// sensible assistantLanguage before Intent has run; the authoritative
	// LanguageContext is recomputed right after Intent completes and is
	// what everything from that point on uses.
	prelimLang := preliminaryLanguageContext(in)

	gateResult := o.deps.Gate.Classify(ctx, in.QueryText)
	if gateResult.FoodSignal == models.FoodSignalNo {
		o.failGate(ctx, job, prelimLang, in.QueryText)
		return
	}

	intentResult := o.deps.Intent.Classify(ctx, in.QueryText)
	lang := language.Resolve(in.UILanguage, intentResult.Language, intentResult.LanguageConfidence)
	o.deps.Logger.Info("language_context_resolved",
		zap.String("requestId", job.RequestID),
		zap.String("uiLanguage", string(lang.UILanguage)),
		zap.String("queryLanguage", string(lang.QueryLanguage)),
		zap.Float64("queryConfidence", lang.QueryConfidence),
		zap.String("assistantLanguage", string(lang.AssistantLanguage)),
		zap.String("assistantLanguageProvenance", string(lang.AssistantProvenance)),
		zap.String("searchLanguage", string(lang.SearchLanguage)),
		zap.String("searchLanguageProvenance", string(lang.SearchProvenance)))
	o.setStatus(ctx, job, models.JobRunning, 25)

	regionCode := intentResult.RegionCandidate
	if regionCode == "" {
		regionCode = in.RegionHint
	}

	skip := filters.DecideSkip(gateResult.FoodSignal == models.FoodSignalYes, intentResult.CityText != "", in.UserLocation != nil, in.QueryText)
	isGenericQuery := skip.SkipPostConstraints

	postConstraints := filters.DefaultPostConstraints()
	baseFilters := filters.DefaultBaseFilters()
	var mapping *models.Mapping

	g, gctx := errgroup.WithContext(ctx)
	if !skip.SkipPostConstraints {
		g.Go(func() error {
			pc, err := o.deps.Filters.PostConstraints(gctx, in.QueryText)
			if err != nil {
				o.deps.Logger.Warn("post_constraints_failed", zap.String("requestId", job.RequestID), zap.Error(err))
				return nil
			}
			postConstraints = pc
			return nil
		})
	}
	if !skip.SkipBaseFilters {
		g.Go(func() error {
			bf, err := o.deps.Filters.BaseFilters(gctx, in.QueryText)
			if err != nil {
				o.deps.Logger.Warn("base_filters_failed", zap.String("requestId", job.RequestID), zap.Error(err))
				return nil
			}
			baseFilters = bf
			return nil
		})
	}
	// Early provider preflight: the Route Mapper only needs queryText,
	// language, region and location, none of which depend on the two filter
	// calls above, so it runs as a third sibling task joined at the same
	// barrier rather than waiting for step 6.
	g.Go(func() error {
		m, err := o.deps.Mapper.Map(gctx, intentResult.Route, in.QueryText, lang, in.UserLocation, intentResult.CityText, regionCode)
		if err != nil {
			return models.NewStageError(models.ErrMapperFailed, "route mapper failed", err)
		}
		mapping = m
		return nil
	})

	if err := g.Wait(); err != nil {
		se := models.AsStageError(err)
		o.fail(ctx, job, se.Kind, se.Message, string(intentResult.Route), lang)
		return
	}
	o.setStatus(ctx, job, models.JobRunning, 40)

	places, err := o.resolvePlaces(ctx, job, in, intentResult, lang, regionCode, mapping, baseFilters, postConstraints)
	if err != nil {
		se := models.AsStageError(err)
		o.fail(ctx, job, se.Kind, se.Message, string(intentResult.Route), lang)
		return
	}
	o.setStatus(ctx, job, models.JobRunning, 60)

	cuisineFailed := false
	requiredTerms, preferredTerms, strictness := cuisineInputs(mapping)
	if cuisine.IsActive(requiredTerms, strictness) {
		result := o.deps.Cuisine.Enforce(ctx, places, requiredTerms, preferredTerms, strictness)
		places = filterByIDs(places, result.KeptPlaceIDs)
		cuisineFailed = result.CuisineEnforcementFailed
		o.setStatus(ctx, job, models.JobRunning, 75)
	}

	pfResult := postfilter.Apply(places, baseFilters, postConstraints, time.Now())
	places = pfResult.Places

	hasUserLocation := in.UserLocation != nil
	profile := models.SelectRankingProfile(intentResult.Route, hasUserLocation, intentResult.Reason)
	origin := models.SelectDistanceOrigin(intentResult.Reason, cityCenterOf(mapping), in.UserLocation)
	rankResult := ranker.Rank(places, profile, origin)
	o.setStatus(ctx, job, models.JobRunning, 90)

	job.Status = models.JobDoneSuccess
	resp := response.Build(job, rankResult.Places, lang, &rankResult.Order, cuisineFailed, response.TookMs(start))
	o.persistTerminal(ctx, job, models.JobDoneSuccess, resp)

	o.fireAssistant(job.RequestID, lang, in.QueryText, isGenericQuery, len(rankResult.Places))
}

// resolvePlaces applies the Requery Decision: it reuses a predecessor's
// candidate pool when only soft filters changed, otherwise calls the
// Provider Stage and registers the new pool for future reuse.
func (o *Orchestrator) resolvePlaces(ctx context.Context, job *models.Job, in Input, intentResult models.IntentResult, lang models.LanguageContext, regionCode string, mapping *models.Mapping, baseFilters models.BaseFilters, postConstraints models.PostConstraints) ([]models.Place, error) {
	normalisedQuery := normaliseQuery(in.QueryText)
	radius := radiusOf(mapping)
	hardKey := hardContextKey(in.SessionID, normalisedQuery, intentResult.Route, intentResult.CityText, regionCode, radius)

	var prevPool *models.CandidatePool
	if ref, ok := o.lookupPool(hardKey); ok {
		if p, err := o.deps.Store.GetCandidatePool(ctx, ref.requestID, ref.sessionID); err == nil && p != nil {
			prevPool = p
		}
	}

	nextCtx := models.SearchContext{
		NormalisedQuery: normalisedQuery,
		Route:           intentResult.Route,
		AnchorCityText:  intentResult.CityText,
		UserLocation:    in.UserLocation,
		RegionCode:      regionCode,
		RadiusMeters:    radius,
		SoftFilters:     softSignatureOf(baseFilters),
	}

	var poolStats *requery.PoolStats
	var prevCtx *models.SearchContext
	if prevPool != nil {
		prevCtx = &prevPool.Context
		filtered := postfilter.Apply(prevPool.Places, baseFilters, postConstraints, time.Now())
		poolStats = &requery.PoolStats{FilteredSize: len(filtered.Places)}
	}

	decision := requery.Decide(prevCtx, nextCtx, poolStats)
	if prevPool != nil && !decision.DoProviderCall {
		return prevPool.Places, nil
	}

	resp, err := o.deps.Provider.Search(ctx, provider.Request{
		Mapping:        *mapping,
		SearchLanguage: lang.SearchLanguage,
		RegionCode:     regionCode,
	}, o.deps.Config.Cache.L2DefaultTTL, o.deps.Config.Cache.LandmarkResTTL)
	if err != nil {
		return nil, models.NewStageError(models.ErrProviderFailed, "provider search failed", err)
	}
	appmetrics.RecordProviderCall(string(intentResult.Route))

	newPool := &models.CandidatePool{Places: resp.Places, Context: nextCtx}
	if err := o.deps.Store.SetCandidatePool(ctx, job.RequestID, newPool); err == nil {
		o.registerPool(hardKey, job.RequestID, in.SessionID)
	}
	return resp.Places, nil
}

func (o *Orchestrator) lookupPool(hardKey string) (poolRef, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	ref, ok := o.poolIndex[hardKey]
	return ref, ok
}

func (o *Orchestrator) registerPool(hardKey, requestID, sessionID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.poolIndex[hardKey] = poolRef{requestID: requestID, sessionID: sessionID}
}

// failGate persists the GATE_FAIL terminal result and pushes its
// accompanying Assistant message — no provider call is ever made.
func (o *Orchestrator) failGate(ctx context.Context, job *models.Job, lang models.LanguageContext, queryText string) {
	msg := o.deps.Assistant.Generate(ctx, assistant.ContextGateFail, lang.AssistantLanguage, queryText)
	o.deps.Hub.Publish(job.RequestID, wshub.EventAssistant, msg)
	o.fail(ctx, job, models.ErrGateFail, "query does not look like a restaurant search", "", lang)
}

// fail persists a terminal DONE_FAILED job with the stable error shape and
// publishes both the terminal event and a SEARCH_FAILED assistant message.
func (o *Orchestrator) fail(ctx context.Context, job *models.Job, kind models.ErrorKind, message, route string, lang models.LanguageContext) {
	_ = o.deps.Store.SetError(ctx, job.RequestID, kind, message, route)
	job.Status = models.JobDoneFailed
	job.Error = &models.JobError{Kind: kind, Message: message, Route: route}
	resp := response.BuildFailed(job, lang)
	o.persistTerminal(ctx, job, models.JobDoneFailed, resp)

	if kind != models.ErrGateFail {
		msg := o.deps.Assistant.Generate(ctx, assistant.ContextSearchFailed, lang.AssistantLanguage, "")
		o.deps.Hub.Publish(job.RequestID, wshub.EventAssistant, msg)
	}
}

func (o *Orchestrator) persistTerminal(ctx context.Context, job *models.Job, status models.JobStatus, resp response.Response) {
	raw, err := json.Marshal(resp)
	if err != nil {
		o.deps.Logger.Error("response_marshal_failed", zap.String("requestId", job.RequestID), zap.Error(err))
	} else if err := o.deps.Store.SetResult(ctx, job.RequestID, raw); err != nil {
		o.deps.Logger.Error("set_result_failed", zap.String("requestId", job.RequestID), zap.Error(err))
	}
	progress := 100
	_ = o.deps.Store.SetStatus(ctx, job.RequestID, status, &progress)
	o.deps.Hub.Publish(job.RequestID, wshub.EventTerminal, resp)
}

// fireAssistant runs the Assistant generation as a detached task: the
// terminal response has already been delivered, so its result is pushed
// only over the WebSocket channel.
func (o *Orchestrator) fireAssistant(requestID string, lang models.LanguageContext, queryText string, isGenericQuery bool, resultCount int) {
	go func() {
		genCtx := assistant.ContextSummary
		switch {
		case resultCount == 0:
			genCtx = assistant.ContextSearchFailed
		case isGenericQuery:
			genCtx = assistant.ContextGenericQueryNarration
		}
		msg := o.deps.Assistant.Generate(context.Background(), genCtx, lang.AssistantLanguage, queryText)
		o.deps.Hub.Publish(requestID, wshub.EventAssistant, msg)
	}()
}

func (o *Orchestrator) setStatus(ctx context.Context, job *models.Job, status models.JobStatus, progress int) {
	job.Status = status
	job.Progress = progress
	_ = o.deps.Store.SetStatus(ctx, job.RequestID, status, &progress)
	o.deps.Hub.Publish(job.RequestID, wshub.EventStatus, statusEvent{Status: status, Progress: progress})
}

func (o *Orchestrator) startHeartbeat(requestID string) func() {
	interval := o.deps.Config.JobStore.HeartbeatInterval
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				_ = o.deps.Store.UpdateHeartbeat(context.Background(), requestID)
			case <-done:
				return
			}
		}
	}()
	return func() {
		ticker.Stop()
		close(done)
	}
}

type statusEvent struct {
	Status   models.JobStatus `json:"status"`
	Progress int              `json:"progress"`
}

func preliminaryLanguageContext(in Input) models.LanguageContext {
	return language.Resolve(in.UILanguage, in.UILanguage, 0)
}

func cuisineInputs(mapping *models.Mapping) (required, preferred []string, strictness models.Strictness) {
	if mapping.Kind != models.MappingTextSearch {
		return nil, nil, models.StrictnessRelaxIfEmpty
	}
	plan := mapping.TextSearch
	return plan.RequiredTerms, plan.PreferredTerms, plan.Strictness
}

func cityCenterOf(mapping *models.Mapping) *orb.Point {
	if mapping.Kind != models.MappingTextSearch || mapping.TextSearch.OptionalLocationBias == nil {
		return nil
	}
	center := mapping.TextSearch.OptionalLocationBias.Center
	return &center
}

func radiusOf(mapping *models.Mapping) float64 {
	switch mapping.Kind {
	case models.MappingNearby:
		return mapping.Nearby.RadiusMeters
	case models.MappingLandmark:
		return mapping.Landmark.RadiusMeters
	case models.MappingTextSearch:
		if mapping.TextSearch.OptionalLocationBias != nil {
			return mapping.TextSearch.OptionalLocationBias.RadiusMeters
		}
	}
	return 0
}

func softSignatureOf(base models.BaseFilters) models.SoftFilterSignature {
	var dietary []string
	if base.Vegetarian {
		dietary = append(dietary, "vegetarian")
	}
	if base.Vegan {
		dietary = append(dietary, "vegan")
	}
	if base.GlutenFree {
		dietary = append(dietary, "glutenFree")
	}
	if base.Halal {
		dietary = append(dietary, "halal")
	}
	if base.Kosher {
		dietary = append(dietary, "kosher")
	}
	return models.SoftFilterSignature{
		OpenNow:              base.OpenState == models.OpenStateOpenNow,
		OpenAtWindow:         base.OpenAt,
		PriceIntent:          string(base.PriceIntent),
		MinRatingBucket:      string(base.MinRatingBucket),
		MinReviewCountBucket: string(base.MinReviewCountBucket),
		DietaryFlags:         dietary,
	}
}

func filterByIDs(places []models.Place, keepIDs []string) []models.Place {
	keep := make(map[string]bool, len(keepIDs))
	for _, id := range keepIDs {
		keep[id] = true
	}
	out := make([]models.Place, 0, len(places))
	for _, p := range places {
		if keep[p.PlaceID] {
			out = append(out, p)
		}
	}
	return out
}

func normaliseQuery(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(q))), " ")
}

// computeIdempotencyKey hashes session, normalised query, mode ("async")
// and the user-location H3 bucket (empty when no location was supplied).
// No soft-filter signature is part of the key, and run never changes the
// key after Submit has stored it.
func computeIdempotencyKey(in Input) string {
	bucket := ""
	if in.UserLocation != nil {
		bucket = fmt.Sprintf("%v", geo.Bucket(*in.UserLocation))
	}
	key, _ := cache.NewCacheKeyBuilder().
		Add("session", in.SessionID).
		Add("query", normaliseQuery(in.QueryText)).
		Add("mode", "async").
		Add("locationBucket", bucket).
		BuildFast()
	return key
}

// hardContextKey identifies the hard portion of a SearchContext so a later
// request whose query/route/anchor/region/radius are unchanged can locate
// the predecessor's candidate pool for the Requery Decision.
func hardContextKey(sessionID, normalisedQuery string, route models.Route, anchorCity, regionCode string, radius float64) string {
	key, _ := cache.NewCacheKeyBuilder().
		Add("session", sessionID).
		Add("query", normalisedQuery).
		Add("route", route).
		Add("anchorCity", anchorCity).
		Add("region", regionCode).
		Add("radius", radius).
		BuildFast()
	return key
}
