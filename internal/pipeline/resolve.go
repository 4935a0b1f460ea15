package pipeline

import (
	"context"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/pkg/apollo"
)

// candidate pairs a search hit with its provenance status token.
type candidate struct {
	person apollo.Person
	origin string
}

// resolveContacts finds up to MaxPerAccount usable contacts for an account:
// a paginated domain search, with a single org-name fallback when the
// domain search comes back empty, then stage filtering, email-first
// ranking, paid email reveal, and dedup against already-persisted rows.
func (p *Pipeline) resolveContacts(ctx context.Context, acct model.Account, stages map[string]string, existing map[string]bool) ([]model.Contact, error) {
	log := zap.L().With(zap.String("domain", acct.Domain))

	collect := func(q apollo.MixedQuery) ([]candidate, error) {
		var out []candidate
		for page := 1; ; page++ {
			q.Page = page
			res, err := p.apollo.SearchMixed(ctx, q)
			if err != nil {
				return nil, err
			}
			for _, person := range res.Contacts {
				out = append(out, candidate{person: person, origin: model.StatusFromApolloContact})
			}
			for _, person := range res.People {
				out = append(out, candidate{person: person, origin: model.StatusFromApolloPerson})
			}
			if res.TotalPages == 0 || page >= res.TotalPages {
				return out, nil
			}
		}
	}

	candidates, err := collect(apollo.MixedQuery{Domain: acct.Domain})
	if err != nil {
		return nil, eris.Wrapf(err, "resolve: domain search %s", acct.Domain)
	}

	// One fallback only: when the domain search finds nobody, look the
	// organization up by name and restart the search with its id.
	if len(candidates) == 0 && acct.Name != "" {
		orgs, err := p.apollo.SearchOrganizations(ctx, acct.Name)
		if err != nil {
			return nil, eris.Wrapf(err, "resolve: org search %q", acct.Name)
		}
		if len(orgs) > 0 {
			log.Info("retrying search by organization id", zap.String("org_id", orgs[0].ID))
			candidates, err = collect(apollo.MixedQuery{OrgID: orgs[0].ID})
			if err != nil {
				return nil, eris.Wrapf(err, "resolve: org id search %s", orgs[0].ID)
			}
		}
	}

	candidates = p.filterByStage(candidates, stages)

	// Candidates with a real address sort ahead of locked ones; stable
	// otherwise so provider ranking survives.
	sort.SliceStable(candidates, func(i, j int) bool {
		return p.hasRealEmail(candidates[i].person) && !p.hasRealEmail(candidates[j].person)
	})

	limit := p.cfg.Apollo.MaxPerAccount
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	var contacts []model.Contact
	seen := map[string]bool{}
	for _, cand := range candidates {
		person := cand.person

		if !p.hasRealEmail(person) {
			enriched, err := p.apollo.EnrichPerson(ctx, person.ID)
			if err != nil {
				log.Warn("email reveal failed", zap.String("person_id", person.ID), zap.Error(err))
				continue
			}
			person.Email = enriched.Email

			// Persist the revealed person as a saved contact. Best
			// effort: the revealed data is still usable when this fails.
			if saved, err := p.apollo.CreateContact(ctx, person); err != nil {
				log.Warn("save contact failed", zap.String("person_id", person.ID), zap.Error(err))
			} else if saved.ID != "" {
				person.ID = saved.ID
			}
		}

		if !p.hasRealEmail(person) {
			continue
		}

		key := model.ContactDedupKey(acct.Domain, person.Email, person.ID)
		if existing[key] || seen[key] {
			continue
		}
		seen[key] = true

		contact := model.Contact{
			Selected: true,
			Domain:   acct.Domain,
			Name:     person.Name,
			Title:    person.Title,
			Stage:    stages[person.ContactStageID],
			Email:    person.Email,
			ApolloID: person.ID,
		}
		contact.Status.Append(cand.origin)
		contacts = append(contacts, contact)
	}

	return contacts, nil
}

// filterByStage keeps candidates whose resolved stage name is on the
// allow-list. A candidate with no stage is always eligible, and an empty
// allow-list admits everyone.
func (p *Pipeline) filterByStage(candidates []candidate, stages map[string]string) []candidate {
	allowed := p.cfg.Apollo.AllowedStages
	if len(allowed) == 0 {
		return candidates
	}

	var out []candidate
	for _, cand := range candidates {
		name := stages[cand.person.ContactStageID]
		if name == "" || stageAllowed(name, allowed) {
			out = append(out, cand)
		}
	}
	return out
}

func stageAllowed(name string, allowed []string) bool {
	for _, a := range allowed {
		if strings.EqualFold(strings.TrimSpace(a), name) {
			return true
		}
	}
	return false
}

// hasRealEmail reports whether the person's address is present and not the
// provider's not-yet-revealed placeholder.
func (p *Pipeline) hasRealEmail(person apollo.Person) bool {
	email := strings.TrimSpace(person.Email)
	return email != "" && !strings.EqualFold(email, p.cfg.Apollo.PlaceholderAddress)
}
