package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/kevinaaaquil/digitallibrary/logging"
	"github.com/kevinaaaquil/digitallibrary/metrics"
	"github.com/kevinaaaquil/digitallibrary/models"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Resolve returns the id of the label called name, creating the label when it does not exist.
// Names are matched exactly: no trimming, no case folding.
func (s *Service) Resolve(ctx context.Context, kind models.LabelKind, name string) (primitive.ObjectID, error) {
	if name == "" {
		return primitive.NilObjectID, validationError("%s name is empty", kind)
	}
	label, err := s.Store.FindLabel(ctx, kind, name)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("find %s %q: %w", kind, name, err)
	}
	if label != nil {
		return label.ID, nil
	}
	label, err = s.Store.InsertLabel(ctx, kind, name)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("create %s %q: %w", kind, name, err)
	}
	return label.ID, nil
}

// attachLabels links each name to the book, one at a time. A label that cannot be resolved or
// linked is logged and skipped; the rest still get linked. With checkExisting an association
// that is already present is left alone instead of being inserted again.
func (s *Service) attachLabels(ctx context.Context, kind models.LabelKind, bookID primitive.ObjectID, names []string, checkExisting bool) {
	for _, name := range names {
		labelID, err := s.Resolve(ctx, kind, name)
		if err != nil {
			skipLabel(ctx, kind, name, err)
			continue
		}
		if checkExisting {
			existing, err := s.Store.FindAssociation(ctx, kind, bookID, labelID)
			if err != nil {
				skipLabel(ctx, kind, name, err)
				continue
			}
			if existing != nil {
				continue
			}
		}
		if err := s.Store.InsertAssociation(ctx, kind, bookID, labelID); err != nil {
			skipLabel(ctx, kind, name, err)
		}
	}
}

// replaceLabels drops every association of kind for the book and links names instead.
// An empty names list keeps the current associations.
func (s *Service) replaceLabels(ctx context.Context, kind models.LabelKind, bookID primitive.ObjectID, names []string) {
	if len(names) == 0 {
		return
	}
	if err := s.Store.DeleteAssociations(ctx, kind, bookID); err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("kind", string(kind)).Str("book", bookID.Hex()).
			Msg("clearing labels failed; keeping existing links")
		return
	}
	s.attachLabels(ctx, kind, bookID, names, false)
}

// mergeLabels adds names to the book without touching existing associations.
func (s *Service) mergeLabels(ctx context.Context, kind models.LabelKind, bookID primitive.ObjectID, names []string) {
	s.attachLabels(ctx, kind, bookID, names, true)
}

func skipLabel(ctx context.Context, kind models.LabelKind, name string, err error) {
	level := zerolog.ErrorLevel
	if errors.Is(err, ErrValidation) {
		level = zerolog.WarnLevel
	}
	logging.Ctx(ctx).WithLevel(level).Err(err).Str("kind", string(kind)).Str("label", name).Msg("label skipped")
	metrics.LabelSkips.WithLabelValues(string(kind)).Inc()
}
