package audit

import (
	"fmt"

	"github.com/nao1215/perfscan/internal/model"
)

const keyLongCacheTTL = "uses-long-cache-ttl"

// detectCaching reports static resources with no or short cache lifetime.
// A resource whose cacheLifetimeMs is zero or absent has no caching at all.
func (d *Detector) detectCaching(r *rawResults) (model.Issue, bool) {
	e, ok := r.entry(keyLongCacheTTL)
	if !ok {
		return model.Issue{}, false
	}

	missing := []string{}
	for _, item := range e.items {
		lifetime, ok := item.number("cacheLifetimeMs")
		if !ok || lifetime <= 0 {
			if u := item.url(); u != "" {
				missing = append(missing, u)
			}
		}
	}

	if len(missing) == 0 && !e.failing(d.passingScore(model.IssueCachingHeaders)) {
		return model.Issue{}, false
	}

	data := &model.CachingHeadersData{
		MissingCacheResources: missing,
		ResourceCount:         len(e.items),
		RecommendedTTL:        d.recommendedTTL,
	}

	severity := d.thresholds.severityOf(e)
	impact := fmt.Sprintf("%s with a short cache lifetime",
		plural(data.ResourceCount, "resource", "resources"))
	if len(missing) > 0 {
		severity = model.SeverityMedium
		impact = fmt.Sprintf("%s of %d served without cache headers",
			plural(len(missing), "resource", "resources"), data.ResourceCount)
	}

	return model.Issue{
		Type:     model.IssueCachingHeaders,
		Severity: severity,
		Impact:   impact,
		Data:     data,
	}, true
}
