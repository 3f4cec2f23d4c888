package regionapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/r2northstar/usregion/pkg/usregion"
	"github.com/rs/zerolog/hlog"
)

// parseOptions parses the region, return and omit params.
func parseOptions(q url.Values) (usregion.Options, error) {
	var o usregion.Options

	cs, err := usregion.ParseClasses(q["region"]...)
	if err != nil {
		return o, err
	}
	o.Classes = cs

	if v := q.Get("return"); v != "" {
		f, ok := usregion.ParseField(v)
		if !ok {
			return o, fmt.Errorf("unknown return type %q", v)
		}
		o.Output = usregion.FieldOutput(f)
	}

	o.Omit = usregion.SplitCodes(q["omit"]...)
	return o, nil
}

func (h *Handler) handleNormalize(w http.ResponseWriter, r *http.Request) {
	if !checkMethod(w, r, h.m().normalize_requests_total.http_method_not_allowed.Inc) {
		return
	}

	// - the result only changes when the table is reloaded
	w.Header().Set("Cache-Control", "public, max-age=300")

	q := r.URL.Query()
	if !q.Has("q") {
		h.m().normalize_requests_total.reject_bad_request.Inc()
		respFail(w, r, http.StatusBadRequest, ErrorCode_BAD_REQUEST.MessageObjf("q param is required"))
		return
	}
	query := q.Get("q")

	opt, err := parseOptions(q)
	if err != nil {
		h.m().normalize_requests_total.reject_bad_request.Inc()
		respFail(w, r, http.StatusBadRequest, ErrorCode_BAD_REQUEST.MessageObjf("%v", err))
		return
	}

	res := h.Resolver()

	code, ok := res.Match(query, opt)
	if !ok {
		hlog.FromRequest(r).Debug().Str("query", query).Msg("no region matched")
		h.m().normalize_requests_total.success_nomatch.Inc()
		respJSON(w, r, http.StatusOK, map[string]any{
			"success": true,
			"query":   query,
			"code":    nil,
			"result":  nil,
		})
		return
	}
	h.m().normalize_matches_total(code).Inc()

	result, ok := res.Normalize(query, opt)
	if ok {
		h.m().normalize_requests_total.success_match.Inc()
	} else {
		h.m().normalize_requests_total.success_noresult.Inc()
	}
	respJSON(w, r, http.StatusOK, map[string]any{
		"success": true,
		"query":   query,
		"code":    code,
		"result":  nullable(result),
	})
}

type regionJSON struct {
	Code  string   `json:"code"`
	Name  string   `json:"name"`
	AP    *string  `json:"ap"`
	Other []string `json:"other"`
	Class string   `json:"class"`
}

func (h *Handler) handleRegions(w http.ResponseWriter, r *http.Request) {
	if !checkMethod(w, r, h.m().regions_requests_total.http_method_not_allowed.Inc) {
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=300")

	cs, err := usregion.ParseClasses(r.URL.Query()["region"]...)
	if err != nil {
		h.m().regions_requests_total.reject_bad_request.Inc()
		respFail(w, r, http.StatusBadRequest, ErrorCode_BAD_REQUEST.MessageObjf("%v", err))
		return
	}
	if len(cs) == 0 {
		cs = []usregion.Class{usregion.All}
	}

	rs := h.Resolver().Table().Records(cs...)
	regions := make([]regionJSON, len(rs))
	for i, x := range rs {
		regions[i] = regionJSON{
			Code:  x.Code,
			Name:  x.Name,
			AP:    nullable(x.AP),
			Other: x.Other,
			Class: x.Class.String(),
		}
		if regions[i].Other == nil {
			regions[i].Other = []string{}
		}
	}

	buf, err := json.Marshal(map[string]any{
		"success": true,
		"regions": regions,
	})
	if err != nil {
		panic(err)
	}
	buf = append(buf, '\n')

	h.m().regions_requests_total.success.Inc()
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	respMaybeCompress(w, r, http.StatusOK, buf)
}
