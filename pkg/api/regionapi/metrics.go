package regionapi

import (
	"fmt"
	"io"
	"reflect"

	"github.com/VictoriaMetrics/metrics"
)

// note: for results, fail_ prefix is for errors which are likely a problem with the backend, and reject_ are for client errors

type apiMetrics struct {
	set                      *metrics.Set
	request_panics_total     *metrics.Counter
	normalize_requests_total struct {
		success_match           *metrics.Counter
		success_nomatch         *metrics.Counter
		success_noresult        *metrics.Counter // matched, but the requested field is missing
		reject_bad_request      *metrics.Counter
		http_method_not_allowed *metrics.Counter
	}
	normalize_matches_total func(code string) *metrics.Counter
	regions_requests_total  struct {
		success                 *metrics.Counter
		reject_bad_request      *metrics.Counter
		http_method_not_allowed *metrics.Counter
	}
	locate_requests_total struct {
		success_match           *metrics.Counter
		success_notus           *metrics.Counter
		reject_bad_request      *metrics.Counter
		fail_unavailable        *metrics.Counter
		fail_ip2location_error  *metrics.Counter
		fail_getregion_error    *metrics.Counter
		fail_other_error        *metrics.Counter
		http_method_not_allowed *metrics.Counter
	}
}

// WritePrometheus writes the API metrics in Prometheus text format.
func (h *Handler) WritePrometheus(w io.Writer) {
	h.m().set.WritePrometheus(w)
}

func (h *Handler) m() *apiMetrics {
	h.metricsInit.Do(func() {
		mo := &h.metricsObj
		mo.set = metrics.NewSet()
		mo.request_panics_total = mo.set.NewCounter(`usregion_api_request_panics_total`)
		mo.normalize_requests_total.success_match = mo.set.NewCounter(`usregion_api_normalize_requests_total{result="success_match"}`)
		mo.normalize_requests_total.success_nomatch = mo.set.NewCounter(`usregion_api_normalize_requests_total{result="success_nomatch"}`)
		mo.normalize_requests_total.success_noresult = mo.set.NewCounter(`usregion_api_normalize_requests_total{result="success_noresult"}`)
		mo.normalize_requests_total.reject_bad_request = mo.set.NewCounter(`usregion_api_normalize_requests_total{result="reject_bad_request"}`)
		mo.normalize_requests_total.http_method_not_allowed = mo.set.NewCounter(`usregion_api_normalize_requests_total{result="http_method_not_allowed"}`)
		mo.normalize_matches_total = func(code string) *metrics.Counter {
			if code == "" {
				panic("invalid code")
			}
			return mo.set.GetOrCreateCounter(`usregion_api_normalize_matches_total{code="` + code + `"}`)
		}
		mo.regions_requests_total.success = mo.set.NewCounter(`usregion_api_regions_requests_total{result="success"}`)
		mo.regions_requests_total.reject_bad_request = mo.set.NewCounter(`usregion_api_regions_requests_total{result="reject_bad_request"}`)
		mo.regions_requests_total.http_method_not_allowed = mo.set.NewCounter(`usregion_api_regions_requests_total{result="http_method_not_allowed"}`)
		mo.locate_requests_total.success_match = mo.set.NewCounter(`usregion_api_locate_requests_total{result="success_match"}`)
		mo.locate_requests_total.success_notus = mo.set.NewCounter(`usregion_api_locate_requests_total{result="success_notus"}`)
		mo.locate_requests_total.reject_bad_request = mo.set.NewCounter(`usregion_api_locate_requests_total{result="reject_bad_request"}`)
		mo.locate_requests_total.fail_unavailable = mo.set.NewCounter(`usregion_api_locate_requests_total{result="fail_unavailable"}`)
		mo.locate_requests_total.fail_ip2location_error = mo.set.NewCounter(`usregion_api_locate_requests_total{result="fail_ip2location_error"}`)
		mo.locate_requests_total.fail_getregion_error = mo.set.NewCounter(`usregion_api_locate_requests_total{result="fail_getregion_error"}`)
		mo.locate_requests_total.fail_other_error = mo.set.NewCounter(`usregion_api_locate_requests_total{result="fail_other_error"}`)
		mo.locate_requests_total.http_method_not_allowed = mo.set.NewCounter(`usregion_api_locate_requests_total{result="http_method_not_allowed"}`)

		// ensure we initialized everything
		checkMetrics(reflect.ValueOf(*mo), "metricsObj")
	})
	return &h.metricsObj
}

func checkMetrics(v reflect.Value, name string) {
	switch v.Kind() {
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			checkMetrics(v.Field(i), name+"."+v.Type().Field(i).Name)
		}
	case reflect.Pointer, reflect.Func:
		if v.IsNil() {
			panic(fmt.Errorf("check metrics: unexpected nil %q", name))
		}
	default:
		panic(fmt.Errorf("check metrics: unexpected kind %s", v.Kind()))
	}
}
