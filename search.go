package drover

import (
	"context"
	"errors"
)

// FindOne searches for a single element. A clean miss is not a failure: it
// is reported as ok == false with a nil error. Any other session failure —
// transport error, invalid session — propagates as a *CommandError.
func FindOne(ctx context.Context, s Session, by Locator) (*Element, bool, error) {
	id, err := s.FindElement(ctx, by)
	if err != nil {
		if errors.Is(err, ErrNoSuchElement) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return &Element{sess: s, id: id}, true, nil
}

// FindAll searches for every matching element. Zero matches is a valid
// successful outcome for a collection query, so the result is an empty
// (never nil) slice rather than an error.
func FindAll(ctx context.Context, s Session, by Locator) ([]*Element, error) {
	ids, err := s.FindElements(ctx, by)
	if err != nil {
		if errors.Is(err, ErrNoSuchElement) {
			return []*Element{}, nil
		}
		return nil, err
	}
	return wrapAll(s, ids), nil
}

func wrapAll(s Session, ids []ElementID) []*Element {
	els := make([]*Element, 0, len(ids))
	for _, id := range ids {
		els = append(els, &Element{sess: s, id: id})
	}
	return els
}
