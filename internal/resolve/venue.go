package resolve

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/cinegraph/awards-cli/internal/model"
	"github.com/cinegraph/awards-cli/internal/store"
)

// VenueResolver classifies segmented location token lists into canonical
// venue shapes and dedups them against the store.
type VenueResolver struct {
	store store.Store
	log   *zap.Logger
}

// NewVenueResolver creates a VenueResolver.
func NewVenueResolver(st store.Store) *VenueResolver {
	return &VenueResolver{
		store: st,
		log:   zap.L().With(zap.String("component", "venue_resolver")),
	}
}

// ClassifyVenue maps an ordered location token list onto the venue shape.
// Early ceremonies rarely spell out the state or country, so missing
// positions default to California/U.S.; the Coconut Grove and Hollywood
// tokens trigger the neighborhood special cases. Returns false for an
// empty list.
func ClassifyVenue(tokens []string) (model.Venue, bool) {
	var clean []string
	for _, t := range tokens {
		if t = strings.TrimSpace(t); t != "" {
			clean = append(clean, t)
		}
	}

	if len(clean) >= 3 && (isGrove(clean[0]) || isGrove(clean[1])) {
		v := model.Venue{City: clean[2], State: "California", Country: "U.S."}
		if isGrove(clean[0]) {
			v.Neighborhood, v.Name = clean[0], clean[1]
		} else {
			v.Name, v.Neighborhood = clean[0], clean[1]
		}
		switch {
		case len(clean) >= 5:
			v.State, v.Country = clean[3], clean[4]
		case len(clean) == 4:
			v.State = clean[3]
		}
		return v, true
	}

	switch len(clean) {
	case 0:
		return model.Venue{}, false
	case 1:
		return model.Venue{Name: clean[0], State: "California", Country: "U.S."}, true
	case 2:
		return model.Venue{Name: clean[0], City: clean[1], State: "California", Country: "U.S."}, true
	case 3:
		if strings.EqualFold(clean[1], "hollywood") {
			return model.Venue{Name: clean[0], Neighborhood: clean[1], City: "Los Angeles", State: clean[2], Country: "U.S."}, true
		}
		return model.Venue{Name: clean[0], City: clean[1], State: clean[2], Country: "U.S."}, true
	case 4:
		if strings.EqualFold(clean[1], "hollywood") {
			// "Dolby Theatre, Hollywood, Los Angeles, California" carries
			// the city explicitly; otherwise the extra tokens are
			// state and country.
			if strings.EqualFold(clean[2], "los angeles") {
				return model.Venue{Name: clean[0], Neighborhood: clean[1], City: clean[2], State: clean[3], Country: "U.S."}, true
			}
			return model.Venue{Name: clean[0], Neighborhood: clean[1], City: "Los Angeles", State: clean[2], Country: clean[3]}, true
		}
		return model.Venue{Name: clean[0], City: clean[1], State: clean[2], Country: clean[3]}, true
	default:
		v := model.Venue{Name: clean[0], Neighborhood: clean[1], City: clean[2], State: clean[3], Country: clean[4]}
		if strings.EqualFold(v.Neighborhood, v.Name) {
			v.Neighborhood = ""
		}
		return v, true
	}
}

func isGrove(token string) bool {
	low := strings.ToLower(token)
	return low == "coconut grove" || low == "cocoanut grove"
}

// ResolveAll classifies each token list and resolves it against the store,
// returning the ids in input order. Unclassifiable lists are skipped with
// a log line; store errors abort, since nothing downstream can proceed
// without venue ids.
func (r *VenueResolver) ResolveAll(ctx context.Context, tokenLists [][]string) ([]int64, error) {
	var ids []int64
	for _, tokens := range tokenLists {
		v, ok := ClassifyVenue(tokens)
		if !ok {
			r.log.Warn("unclassifiable venue tokens", zap.Strings("tokens", tokens))
			continue
		}

		id, created, err := r.store.ResolveOrCreateVenue(ctx, v)
		if err != nil {
			return nil, err
		}
		if created {
			r.log.Info("venue created", zap.String("name", v.Name), zap.Int64("venue_id", id))
		} else {
			r.log.Debug("venue already present", zap.String("name", v.Name), zap.Int64("venue_id", id))
		}
		ids = append(ids, id)
	}
	return ids, nil
}
