// Package seed loads a JSON workout bundle into a repository store. Bundles
// are the planner's export format: workouts with per-position protocol
// assignments, their instances, and the planned sets.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/claude/ironcoach/internal/models"
	"github.com/claude/ironcoach/internal/repo"
	"github.com/google/uuid"
)

// Stats tracks what a load inserted.
type Stats struct {
	Workouts  int
	Instances int
	Sets      int
}

// Bundle is the on-disk shape of a seed file.
type Bundle struct {
	MemberID string          `json:"memberId"`
	Workouts []BundleWorkout `json:"workouts"`
}

type BundleWorkout struct {
	Name               string                 `json:"name"`
	ScheduledDate      time.Time              `json:"scheduledDate"`
	ExerciseIDs        []string               `json:"exerciseIds"`
	ProtocolVariantIDs map[string]string      `json:"protocolVariantIds"`
	SupersetGroups     []models.SupersetGroup `json:"supersetGroups,omitempty"`
	Instances          []BundleInstance       `json:"instances"`
}

type BundleInstance struct {
	ExerciseID        string      `json:"exerciseId"`
	ProtocolVariantID string      `json:"protocolVariantId"`
	Sets              []BundleSet `json:"sets"`
}

type BundleSet struct {
	SetNumber    int      `json:"setNumber"`
	TargetWeight *float64 `json:"targetWeight,omitempty"`
	TargetReps   *int     `json:"targetReps,omitempty"`
	TargetRPE    *float64 `json:"targetRPE,omitempty"`
}

// Loader inserts seed bundles into a store.
type Loader struct {
	store  repo.Store
	log    *slog.Logger
	dryRun bool
}

// New creates a Loader. With dryRun set, LoadFile parses and counts but
// writes nothing.
func New(store repo.Store, log *slog.Logger, dryRun bool) *Loader {
	return &Loader{store: store, log: log, dryRun: dryRun}
}

// LoadFile reads a bundle file and inserts its contents.
func (l *Loader) LoadFile(ctx context.Context, path string) (*Stats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading bundle: %w", err)
	}
	var bundle Bundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, fmt.Errorf("parsing bundle: %w", err)
	}
	return l.Load(ctx, &bundle)
}

// Load inserts a parsed bundle.
func (l *Loader) Load(ctx context.Context, bundle *Bundle) (*Stats, error) {
	memberID, err := uuid.Parse(bundle.MemberID)
	if err != nil {
		return nil, fmt.Errorf("parsing member id: %w", err)
	}

	stats := &Stats{}
	for i := range bundle.Workouts {
		if err := l.loadWorkout(ctx, memberID, &bundle.Workouts[i], stats); err != nil {
			return stats, fmt.Errorf("loading workout %q: %w", bundle.Workouts[i].Name, err)
		}
	}
	l.log.Info("seed bundle loaded",
		"workouts", stats.Workouts,
		"instances", stats.Instances,
		"sets", stats.Sets,
		"dry_run", l.dryRun,
	)
	return stats, nil
}

func (l *Loader) loadWorkout(ctx context.Context, memberID uuid.UUID, bw *BundleWorkout, stats *Stats) error {
	w := &models.Workout{
		ID:                 uuid.New(),
		MemberID:           memberID,
		Name:               bw.Name,
		ScheduledDate:      bw.ScheduledDate,
		ExerciseIDs:        bw.ExerciseIDs,
		SupersetGroups:     bw.SupersetGroups,
		ProtocolVariantIDs: make(map[int]string, len(bw.ProtocolVariantIDs)),
		Status:             models.WorkoutScheduled,
	}
	// Bundle files key protocol assignments by position string.
	for posStr, protocolID := range bw.ProtocolVariantIDs {
		var pos int
		if _, err := fmt.Sscanf(posStr, "%d", &pos); err != nil {
			return fmt.Errorf("parsing protocol position %q: %w", posStr, err)
		}
		w.ProtocolVariantIDs[pos] = protocolID
	}

	if !l.dryRun {
		if err := l.store.SaveWorkout(ctx, w); err != nil {
			return err
		}
	}
	stats.Workouts++

	for pos, bi := range bw.Instances {
		inst := &models.ExerciseInstance{
			ID:                uuid.New(),
			ExerciseID:        bi.ExerciseID,
			WorkoutID:         w.ID,
			Position:          pos,
			ProtocolVariantID: bi.ProtocolVariantID,
			Status:            models.WorkoutScheduled,
		}
		if g, slot, ok := w.SupersetGroupFor(pos); ok {
			inst.SupersetLabel = g.Label(slot)
		}

		var sets []*models.ExerciseSet
		for _, bs := range bi.Sets {
			set := &models.ExerciseSet{
				ID:                 uuid.New(),
				ExerciseInstanceID: inst.ID,
				SetNumber:          bs.SetNumber,
				TargetWeight:       bs.TargetWeight,
				TargetReps:         bs.TargetReps,
				TargetRPE:          bs.TargetRPE,
				Completion:         models.SetScheduled,
			}
			inst.SetIDs = append(inst.SetIDs, set.ID)
			sets = append(sets, set)
		}

		if !l.dryRun {
			if err := l.store.SaveInstance(ctx, inst); err != nil {
				return err
			}
			for _, set := range sets {
				if err := l.store.SaveSet(ctx, set); err != nil {
					return err
				}
			}
		}
		stats.Instances++
		stats.Sets += len(sets)
	}
	return nil
}
