// Package store persists the household State as one atomic snapshot.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dukerupert/foyer/internal/model"
)

// Gateway loads and saves the whole household aggregate. Load returns
// model.DefaultState when nothing has been saved yet. Save replaces the
// previous snapshot completely or not at all.
type Gateway interface {
	Load(ctx context.Context) (model.State, error)
	Save(ctx context.Context, st model.State) error
	Close() error
}

// bucketNames is the order buckets are written in.
var bucketNames = []string{
	"treasury",
	"ranking",
	"pending",
	"history",
	"custom_tasks",
	"custom_rewards",
	"purchases",
	"deliveries",
	"members",
}

func bucketTargets(st *model.State) map[string]any {
	return map[string]any{
		"treasury":       &st.Treasury,
		"ranking":        &st.Ranking,
		"pending":        &st.Pending,
		"history":        &st.History,
		"custom_tasks":   &st.CustomTasks,
		"custom_rewards": &st.CustomRewards,
		"purchases":      &st.Purchases,
		"deliveries":     &st.Deliveries,
		"members":        &st.Members,
	}
}

func encodeBuckets(st model.State) (map[string][]byte, error) {
	st.Normalize()
	targets := bucketTargets(&st)
	out := make(map[string][]byte, len(bucketNames))
	for _, name := range bucketNames {
		data, err := json.Marshal(targets[name])
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", name, err)
		}
		out[name] = data
	}
	return out, nil
}

// decodeBuckets rebuilds a State from raw bucket payloads. Unknown buckets
// are ignored and missing ones stay empty.
func decodeBuckets(raw map[string][]byte) (model.State, error) {
	var st model.State
	targets := bucketTargets(&st)
	for name, payload := range raw {
		target, ok := targets[name]
		if !ok {
			continue
		}
		if err := json.Unmarshal(payload, target); err != nil {
			return model.State{}, fmt.Errorf("decode %s: %w", name, err)
		}
	}
	st.Normalize()
	return st, nil
}
