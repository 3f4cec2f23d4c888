package regionapi

import (
	"errors"
	"net/http"
	"net/netip"

	"github.com/r2northstar/usregion/pkg/regionmap"
	"github.com/rs/zerolog/hlog"
)

func (h *Handler) handleLocate(w http.ResponseWriter, r *http.Request) {
	if !checkMethod(w, r, h.m().locate_requests_total.http_method_not_allowed.Inc) {
		return
	}

	// - do not cache (the result may depend on the client address)
	w.Header().Set("Cache-Control", "private, no-cache, no-store, max-age=0, must-revalidate")
	w.Header().Set("Expires", "0")
	w.Header().Set("Pragma", "no-cache")

	var ip netip.Addr
	if v := r.URL.Query().Get("ip"); v != "" {
		x, err := netip.ParseAddr(v)
		if err != nil {
			h.m().locate_requests_total.reject_bad_request.Inc()
			respFail(w, r, http.StatusBadRequest, ErrorCode_BAD_REQUEST.MessageObjf("invalid ip: %v", err))
			return
		}
		ip = x
	} else if x, err := netip.ParseAddrPort(r.RemoteAddr); err == nil {
		ip = x.Addr()
	} else {
		hlog.FromRequest(r).Error().
			Err(err).
			Msgf("failed to parse remote ip %q", r.RemoteAddr)
		h.m().locate_requests_total.fail_other_error.Inc()
		respFail(w, r, http.StatusInternalServerError, ErrorCode_INTERNAL_SERVER_ERROR.MessageObj())
		return
	}
	ip = ip.Unmap()

	if h.LookupIP == nil {
		h.m().locate_requests_total.fail_unavailable.Inc()
		respFail(w, r, http.StatusServiceUnavailable, ErrorCode_IP2LOCATION_UNAVAILABLE.MessageObj())
		return
	}

	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}

	rec, err := h.LookupIP(ip)
	if err != nil {
		hlog.FromRequest(r).Error().
			Err(err).
			Msgf("failed to lookup %s in ip2location", ip)
		h.m().locate_requests_total.fail_ip2location_error.Inc()
		respFail(w, r, http.StatusInternalServerError, ErrorCode_INTERNAL_SERVER_ERROR.MessageObj())
		return
	}

	res := h.Resolver()

	loc, err := regionmap.GetLocation(res, ip, rec)
	if err != nil {
		if errors.Is(err, regionmap.ErrNotUS) {
			h.m().locate_requests_total.success_notus.Inc()
		} else {
			hlog.FromRequest(r).Warn().
				Err(err).
				Msgf("failed to get region for %s", ip)
			h.m().locate_requests_total.fail_getregion_error.Inc()
		}
		respJSON(w, r, http.StatusOK, map[string]any{
			"success": true,
			"ip":      ip.String(),
			"code":    nil,
			"name":    nil,
			"class":   nil,
		})
		return
	}

	obj := map[string]any{
		"success":         true,
		"ip":              ip.String(),
		"code":            loc.Code,
		"name":            nil,
		"class":           loc.Class.String(),
		"census_region":   nil,
		"census_division": nil,
	}
	if x, ok := res.Table().Lookup(loc.Code); ok {
		obj["name"] = x.Name
	}
	if region, division, ok := regionmap.Census(loc.Code); ok {
		obj["census_region"] = region
		obj["census_division"] = division
	}

	h.m().locate_requests_total.success_match.Inc()
	respJSON(w, r, http.StatusOK, obj)
}
