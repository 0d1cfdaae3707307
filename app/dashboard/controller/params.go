package controller

import (
	"net/http"
	"strings"
	"time"

	"github.com/pkgpulse/pkgpulse/pkg/db/downloads"
)

// querySpec carries the parsed dashboard inputs: time granularity, start date
// and the package filter. Packages nil means "no filter requested";
// PackagesSet distinguishes an explicit empty selection from an absent one.
type querySpec struct {
	Granularity string
	Since       time.Time
	Packages    []string
	PackagesSet bool
}

func (c *Controller) parseQuerySpec(r *http.Request) (querySpec, error) {
	qs := r.URL.Query()

	spec := querySpec{
		Granularity: downloads.GranularityMonthly,
		Since:       c.App.DefaultSince,
	}

	if v := qs.Get("granularity"); v != "" {
		switch v {
		case downloads.GranularityWeekly, downloads.GranularityMonthly:
			spec.Granularity = v
		default:
			return querySpec{}, errInvalidGranularity
		}
	}

	if v := qs.Get("since"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return querySpec{}, errInvalidSince
		}
		spec.Since = t
	}

	if raw, ok := qs["packages"]; ok {
		spec.PackagesSet = true
		for _, chunk := range raw {
			for _, p := range strings.Split(chunk, ",") {
				p = strings.TrimSpace(p)
				if p != "" {
					spec.Packages = append(spec.Packages, p)
				}
			}
		}
	}

	return spec, nil
}

var (
	errInvalidGranularity = &parseError{msg: "invalid granularity, must be 'weekly' or 'monthly'"}
	errInvalidSince       = &parseError{msg: "invalid since, must be YYYY-MM-DD"}
	errInvalidScale       = &parseError{msg: "invalid scale, must be 'linear' or 'log'"}
)

type parseError struct{ msg string }

func (e *parseError) Error() string { return e.msg }
