package liquiddemocracy

import (
	"log/slog"
	"time"

	"liquido/contexts/governance/liquid-democracy/adapters/cache"
	httpadapter "liquido/contexts/governance/liquid-democracy/adapters/http"
	"liquido/contexts/governance/liquid-democracy/adapters/memory"
	application "liquido/contexts/governance/liquid-democracy/application"
	"liquido/contexts/governance/liquid-democracy/application/commands"
	"liquido/contexts/governance/liquid-democracy/application/queries"
	"liquido/contexts/governance/liquid-democracy/application/workers"
	"liquido/contexts/governance/liquid-democracy/domain/services"
	"liquido/contexts/governance/liquid-democracy/ports"

	"github.com/jonboulle/clockwork"
)

// Module is the liquid-democracy composition root exposed to runtime wiring.
type Module struct {
	Handler       httpadapter.Handler
	Sweeper       workers.VoterTokenSweeper
	Notifications workers.NotificationConsumer
	Store         *memory.Store
}

// Dependencies captures all runtime ports/config required by NewModule.
type Dependencies struct {
	Repository     ports.Repository
	Transactor     ports.Transactor
	Notifier       ports.Notifier
	ResultCache    ports.PollResultCache
	Clock          ports.Clock
	IDGenerator    ports.IDGenerator
	TokenGenerator ports.TokenGenerator
	Hasher         services.Hasher
	VoterTokenTTL  time.Duration
	RightToVoteTTL time.Duration
	UnrankedPolicy services.UnrankedPolicy
	MaxChainDepth  int
	Logger         *slog.Logger
}

func NewModule(deps Dependencies) Module {
	rightsToVote := application.RightToVoteStore{
		Hasher: deps.Hasher,
		TTL:    deps.RightToVoteTTL,
	}
	tokens := application.VoterTokens{Hasher: deps.Hasher}

	handler := httpadapter.Handler{
		RightsToVote: commands.RightToVoteUseCase{
			Transactor:   deps.Transactor,
			RightsToVote: rightsToVote,
			Clock:        deps.Clock,
			Logger:       deps.Logger,
		},
		Delegations: commands.DelegationUseCase{
			Transactor:    deps.Transactor,
			RightsToVote:  rightsToVote,
			Notifier:      deps.Notifier,
			Clock:         deps.Clock,
			IDGen:         deps.IDGenerator,
			MaxChainDepth: deps.MaxChainDepth,
			Logger:        deps.Logger,
		},
		VoterTokens: commands.VoterTokenUseCase{
			Transactor:   deps.Transactor,
			RightsToVote: rightsToVote,
			Tokens:       tokens,
			TokenGen:     deps.TokenGenerator,
			Clock:        deps.Clock,
			TTL:          deps.VoterTokenTTL,
			Logger:       deps.Logger,
		},
		CastVote: commands.CastVoteUseCase{
			Transactor:    deps.Transactor,
			Tokens:        tokens,
			Clock:         deps.Clock,
			IDGen:         deps.IDGenerator,
			MaxChainDepth: deps.MaxChainDepth,
			Logger:        deps.Logger,
		},
		PollPhases: commands.PollPhaseUseCase{
			Transactor: deps.Transactor,
			Tally:      services.RankedPairs{Unranked: deps.UnrankedPolicy},
			Notifier:   deps.Notifier,
			Clock:      deps.Clock,
			IDGen:      deps.IDGenerator,
			Logger:     deps.Logger,
		},
		Ballots: queries.BallotQueries{
			Transactor: deps.Transactor,
			Repository: deps.Repository,
			Tokens:     tokens,
			Clock:      deps.Clock,
			Logger:     deps.Logger,
		},
		EffectiveProxy: queries.EffectiveProxyResolver{
			Transactor:    deps.Transactor,
			RightsToVote:  rightsToVote,
			Tokens:        tokens,
			Clock:         deps.Clock,
			MaxChainDepth: deps.MaxChainDepth,
			Logger:        deps.Logger,
		},
		PollResults: queries.PollResultQuery{
			Repository: deps.Repository,
			Cache:      deps.ResultCache,
			Logger:     deps.Logger,
		},
		DelegationView: queries.DelegationQueries{
			Repository: deps.Repository,
		},
		Logger: deps.Logger,
	}

	return Module{
		Handler: handler,
		Sweeper: workers.VoterTokenSweeper{
			Tokens: deps.Repository,
			Clock:  deps.Clock,
			Logger: deps.Logger,
		},
		Notifications: workers.NotificationConsumer{Logger: deps.Logger},
	}
}

// NewInMemoryModule builds a development/testing module with in-memory
// adapters and fixed hashing secrets. A nil clock means wall-clock time.
func NewInMemoryModule(clock clockwork.Clock, logger *slog.Logger) Module {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	store := memory.NewStore()
	deps := Dependencies{
		Repository:     store,
		Transactor:     store,
		Clock:          clock,
		IDGenerator:    store,
		TokenGenerator: store,
		Hasher:         services.NewHasher("dev-right-to-vote-secret", "dev-voter-token-secret"),
		VoterTokenTTL:  commands.DefaultVoterTokenTTL,
		RightToVoteTTL: 365 * 24 * time.Hour,
		UnrankedPolicy: services.UnrankedIgnore,
		Logger:         logger,
	}
	if results, err := cache.NewPollResults(cache.DefaultPollResultCacheSize); err == nil {
		deps.ResultCache = results
	}
	module := NewModule(deps)
	module.Store = store
	return module
}
