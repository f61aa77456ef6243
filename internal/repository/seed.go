package repository

import "github.com/YatinKare/DesignDual/internal/model"

// DefaultProblems is the built-in practice catalog, seeded at startup.
func DefaultProblems() []model.Problem {
	standardPhaseTimes := map[model.PhaseName]int{
		model.PhaseClarify:  5,
		model.PhaseEstimate: 5,
		model.PhaseDesign:   20,
		model.PhaseExplain:  10,
	}

	return []model.Problem{
		{
			ProblemSummary: model.ProblemSummary{
				ID:                   "prob-url-shortener",
				Slug:                 "url-shortener",
				Title:                "Design a URL Shortener",
				Difficulty:           model.DifficultyApprentice,
				FocusTags:            []string{"hashing", "caching", "read-heavy"},
				EstimatedTimeMinutes: 40,
			},
			Prompt: "Design a URL shortening service like bit.ly. Users submit a long URL and get back a short link that redirects to the original.",
			Constraints: []string{
				"100M new links per month",
				"10:1 read/write ratio at minimum",
				"Redirects must stay under 100ms p99",
			},
			PhaseTimeMinutes: standardPhaseTimes,
			RubricDefinition: []model.RubricDefinition{
				{
					Label:       "Requirements Coverage",
					Description: "Functional scope and non-functional targets are stated explicitly.",
					PhaseWeights: map[model.PhaseName]float64{
						model.PhaseClarify: 0.6,
						model.PhaseExplain: 0.4,
					},
				},
				{
					Label:       "Capacity Planning",
					Description: "Traffic, storage, and key-space estimates are sound.",
					PhaseWeights: map[model.PhaseName]float64{
						model.PhaseEstimate: 0.7,
						model.PhaseDesign:   0.3,
					},
				},
				{
					Label:       "Core Design",
					Description: "Key generation, storage, and the redirect path are well designed.",
					PhaseWeights: map[model.PhaseName]float64{
						model.PhaseDesign:  0.7,
						model.PhaseExplain: 0.3,
					},
				},
				{
					Label:       "Tradeoff Awareness",
					Description: "Collisions, cache invalidation, and hot keys are addressed.",
					PhaseWeights: map[model.PhaseName]float64{
						model.PhaseDesign:  0.4,
						model.PhaseExplain: 0.6,
					},
				},
			},
			SampleSolutionOutline: "Base62 keys from a counter service, write-through cache for hot links, 301 vs 302 tradeoff, analytics as an async pipeline.",
		},
		{
			ProblemSummary: model.ProblemSummary{
				ID:                   "prob-chat-system",
				Slug:                 "chat-system",
				Title:                "Design a Real-Time Chat System",
				Difficulty:           model.DifficultySorcerer,
				FocusTags:            []string{"websockets", "fanout", "ordering"},
				EstimatedTimeMinutes: 40,
			},
			Prompt: "Design a real-time chat system supporting one-on-one and group conversations with message history and delivery receipts.",
			Constraints: []string{
				"50M daily active users",
				"Groups up to 500 members",
				"Messages delivered in order within a conversation",
			},
			PhaseTimeMinutes: standardPhaseTimes,
			RubricDefinition: []model.RubricDefinition{
				{
					Label:       "Requirements Coverage",
					Description: "Delivery semantics, presence, and history requirements are pinned down.",
					PhaseWeights: map[model.PhaseName]float64{
						model.PhaseClarify: 0.6,
						model.PhaseExplain: 0.4,
					},
				},
				{
					Label:       "Capacity Planning",
					Description: "Connection counts, message volume, and storage are estimated.",
					PhaseWeights: map[model.PhaseName]float64{
						model.PhaseEstimate: 0.7,
						model.PhaseDesign:   0.3,
					},
				},
				{
					Label:       "Core Design",
					Description: "Connection management, fanout, and message storage are well designed.",
					PhaseWeights: map[model.PhaseName]float64{
						model.PhaseDesign:  0.7,
						model.PhaseExplain: 0.3,
					},
				},
				{
					Label:       "Tradeoff Awareness",
					Description: "Ordering guarantees, offline delivery, and large-group fanout are discussed.",
					PhaseWeights: map[model.PhaseName]float64{
						model.PhaseDesign:  0.4,
						model.PhaseExplain: 0.6,
					},
				},
			},
			SampleSolutionOutline: "Sticky websocket gateways, per-conversation sequence numbers, inbox model for offline users, pull-based fanout for large groups.",
		},
		{
			ProblemSummary: model.ProblemSummary{
				ID:                   "prob-rate-limiter",
				Slug:                 "distributed-rate-limiter",
				Title:                "Design a Distributed Rate Limiter",
				Difficulty:           model.DifficultyArchmage,
				FocusTags:            []string{"consistency", "low-latency", "coordination"},
				EstimatedTimeMinutes: 40,
			},
			Prompt: "Design a rate limiting service that protects a fleet of API servers, enforcing per-user and per-endpoint limits across data centers.",
			Constraints: []string{
				"1M requests per second aggregate",
				"Limit decisions must add under 2ms",
				"Limits enforced globally, not per node",
			},
			PhaseTimeMinutes: standardPhaseTimes,
			RubricDefinition: []model.RubricDefinition{
				{
					Label:       "Requirements Coverage",
					Description: "Accuracy vs latency expectations and failure behavior are clarified.",
					PhaseWeights: map[model.PhaseName]float64{
						model.PhaseClarify: 0.6,
						model.PhaseExplain: 0.4,
					},
				},
				{
					Label:       "Capacity Planning",
					Description: "Counter cardinality, memory footprint, and sync traffic are estimated.",
					PhaseWeights: map[model.PhaseName]float64{
						model.PhaseEstimate: 0.7,
						model.PhaseDesign:   0.3,
					},
				},
				{
					Label:       "Core Design",
					Description: "Algorithm choice and the distributed counter architecture are sound.",
					PhaseWeights: map[model.PhaseName]float64{
						model.PhaseDesign:  0.7,
						model.PhaseExplain: 0.3,
					},
				},
				{
					Label:       "Tradeoff Awareness",
					Description: "Fail-open vs fail-closed and accuracy vs coordination cost are weighed.",
					PhaseWeights: map[model.PhaseName]float64{
						model.PhaseDesign:  0.4,
						model.PhaseExplain: 0.6,
					},
				},
			},
			SampleSolutionOutline: "Sliding window counters in Redis with local token buckets for the fast path, async cross-region reconciliation, fail-open with alerting.",
		},
	}
}
