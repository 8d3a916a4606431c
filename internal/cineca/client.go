// Package cineca talks to the university scheduling platform. Calendars are
// published per building behind a two-step dance: POST a filter to obtain a
// download id, then GET the iCalendar payload for that id.
package cineca

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Endpoints carry the platform URLs. Pharmacy lives on a different tenant
// of the same platform and needs its own pair.
type Endpoints struct {
	Filter           string
	Schedule         string
	PharmacyFilter   string
	PharmacySchedule string
}

var DefaultEndpoints = Endpoints{
	Filter:           "https://unipi.prod.up.cineca.it/api/FiltriICal/creaFiltroICal",
	Schedule:         "https://unipi.prod.up.cineca.it/api/FiltriICal/impegniICal?id=",
	PharmacyFilter:   "https://unich.prod.up.cineca.it/api/FiltriICal/creaFiltroICal",
	PharmacySchedule: "https://unich.prod.up.cineca.it/api/FiltriICal/impegniICal?id=",
}

const (
	clientID         = "628de8b9b63679f193b87046"
	pharmacyClientID = "5a65a9ebd9fe4f6d0ccf9df6"
	pharmacyBuilding = "poloFarmacia"
)

// CalendarIDs maps building codes to their published calendar ids.
var CalendarIDs = map[string]string{
	"poloA":           "63247d96e3772a0690e3bcb4",
	"poloB":           "63247e36ac73c806bfa2dfc2",
	"poloC":           "63247e5ee3772a0690e3bd51",
	"poloPN":          "63247c2237746802ea1c1cae",
	"poloF":           "63247ea337746802ea1c1d4b",
	"poloFibonacci":   "63223a029f080a0aab032afc",
	"poloBenedettine": "63247fadac73c806bfa2e09a",
	"poloEconomia":    "6501c7315640d3007d1012b9",
	"poloPiagge":      "631e682b617f10007c563735",
	"poloCarmignani":  "63247758e3772a0690e3b9f3",
	"poloGuidotti":    "64ff310b0c7dac007d24cdc3",
	"poloNobili":      "64ff316f3f77cd0078076002",
	"poloP.Ricci":     "64ff2e89dd600900782c3cc3",
	"poloP.Boileau":   "6501c860675557007eb417c0",
	"poloS.Rossore":   "63247d5f75616d04046a0779",
	"poloSapienza":    "63247af9ac73c806bfa2def2",
	"poloFarmacia":    "5dd7953c1c9f510011e17fbf",
}

// Coordinates maps building codes to [longitude, latitude].
var Coordinates = map[string][2]float64{
	"poloA":           {10.389842986424895, 43.72105258709789},
	"poloB":           {10.389289766627002, 43.72208800629937},
	"poloC":           {10.38901079266688, 43.72140114553582},
	"poloF":           {10.388287350482187, 43.72085438583843},
	"poloPN":          {10.391229871075552, 43.72584890979181},
	"poloFibonacci":   {10.408037918667361, 43.720879347333835},
	"poloBenedettine": {10.39397528101884, 43.71344829248517},
	"poloEconomia":    {10.410379473942072, 43.711018978876695},
	"poloPiagge":      {10.412023465973618, 43.710610273943814},
	"poloCarmignani":  {10.40094950738802, 43.72011831490275},
	"poloGuidotti":    {10.392386095658338, 43.71741398544361},
	"poloNobili":      {10.395924531247118, 43.71849818636451},
	"poloP.Ricci":     {10.396921563725783, 43.717686512092854},
	"poloP.Boileau":   {10.397074275993532, 43.71998968935904},
	"poloS.Rossore":   {10.392641884389207, 43.717998675187204},
	"poloSapienza":    {10.399496403929106, 43.717311583201365},
	"poloFarmacia":    {10.3889513118217, 43.71661901268172},
}

// Client downloads the day's raw calendars. The result maps building code to
// iCalendar payload; a building whose download fails is logged and omitted
// so one broken feed never blanks the others.
type Client interface {
	FetchDay(ctx context.Context, day time.Time) (map[string]string, error)
}

func NewClient(httpClient *http.Client, logger *slog.Logger) Client {
	return &calendarClient{
		http:      httpClient,
		logger:    logger,
		endpoints: DefaultEndpoints,
	}
}

type calendarClient struct {
	http      *http.Client
	logger    *slog.Logger
	endpoints Endpoints
}

type filterRequest struct {
	ClienteID        string `json:"clienteId"`
	DataA            string `json:"dataA"`
	DataDa           string `json:"dataDa"`
	DataScadenza     string `json:"dataScadenza"`
	LinkCalendarioID string `json:"linkCalendarioId"`
}

type filterResponse struct {
	ID string `json:"id"`
}

func (c *calendarClient) FetchDay(ctx context.Context, day time.Time) (map[string]string, error) {
	calendars := make(map[string]string, len(CalendarIDs))

	for building, calendarID := range CalendarIDs {
		payload, err := c.fetchBuilding(ctx, building, calendarID, day)
		if err != nil {
			c.logger.Warn("calendar download failed", "building", building, "error", err)
			continue
		}
		calendars[building] = payload
	}

	if len(calendars) == 0 {
		return nil, fmt.Errorf("no calendar could be downloaded for %v", day.Format(time.DateOnly))
	}
	return calendars, nil
}

func (c *calendarClient) fetchBuilding(ctx context.Context, building, calendarID string, day time.Time) (string, error) {
	filterURL, scheduleURL, tenantClientID := c.endpoints.Filter, c.endpoints.Schedule, clientID
	if building == pharmacyBuilding {
		filterURL, scheduleURL, tenantClientID = c.endpoints.PharmacyFilter, c.endpoints.PharmacySchedule, pharmacyClientID
	}

	// The filter window brackets the local day in the platform's UTC terms.
	request := filterRequest{
		ClienteID:        tenantClientID,
		DataDa:           day.AddDate(0, 0, -1).Format(time.DateOnly) + "T22:00:00.000Z",
		DataA:            day.AddDate(0, 0, 1).Format(time.DateOnly) + "T22:59:59.999Z",
		DataScadenza:     day.AddDate(0, 0, 1).Format(time.DateOnly) + "T23:00:00.000Z",
		LinkCalendarioID: calendarID,
	}

	id, err := c.createFilter(ctx, filterURL, request)
	if err != nil {
		return "", fmt.Errorf("cannot create calendar filter: %w", err)
	}
	return c.downloadSchedule(ctx, scheduleURL+id)
}

func (c *calendarClient) createFilter(ctx context.Context, url string, request filterRequest) (string, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json;charset=UTF-8")
	req.Header.Set("Accept", "application/json, text/plain, */*")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %v", resp.StatusCode)
	}

	var filter filterResponse
	if err := json.NewDecoder(resp.Body).Decode(&filter); err != nil {
		return "", err
	}
	if filter.ID == "" {
		return "", fmt.Errorf("filter response carries no id")
	}
	return filter.ID, nil
}

func (c *calendarClient) downloadSchedule(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %v", resp.StatusCode)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(payload), nil
}
