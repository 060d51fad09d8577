/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	data for demos. Each scenario creates salary changes, employees and
	attendance that demonstrate one accrual rule.

AVAILABLE SCENARIOS:

	end-to-end:        Rate rise in April and a missed day in February
	mid-month-joiner:  Proration in the joining month, Half Done days
	negative-net:      Deductions above gross; company total floors at zero
	roster:            Mixed roster incl. an unparsable joining date

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Append salary changes through the service (same validation as the API)
 3. Save employees
 4. Record attendance

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "end-to-end"}

ADDING NEW SCENARIOS:
 1. Write a loader: func (h *Handler) loadXxxScenario(ctx) error
 2. Add it to the 'scenarios' slice with ID, name, description

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: ResetDatabase
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

type scenario struct {
	ScenarioDTO
	load func(h *Handler, ctx context.Context) error
}

var scenarios = []scenario{
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "end-to-end",
			Name:        "End to End",
			Description: "Rate rises from 1500 to 1800 in April; employee joins 15 January and misses 10 February",
		},
		load: (*Handler).loadEndToEndScenario,
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "mid-month-joiner",
			Name:        "Mid-Month Joiner",
			Description: "Joining-month proration at 3000 with Half Done days that do not deduct",
		},
		load: (*Handler).loadMidMonthJoinerScenario,
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "negative-net",
			Name:        "Negative Net",
			Description: "Deductions exceed gross for one employee; the company total counts them as zero",
		},
		load: (*Handler).loadNegativeNetScenario,
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "roster",
			Name:        "Roster",
			Description: "Several employees, one with an unparsable joining date that never accrues",
		},
		load: (*Handler).loadRosterScenario,
	},
}

func findScenario(id string) (scenario, bool) {
	for _, s := range scenarios {
		if s.ID == id {
			return s, true
		}
	}
	return scenario{}, false
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	dtos := make([]ScenarioDTO, len(scenarios))
	for i, s := range scenarios {
		dtos[i] = s.ScenarioDTO
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	if current == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	if s, ok := findScenario(current); ok {
		writeJSON(w, http.StatusOK, s.ScenarioDTO)
		return
	}
	writeJSON(w, http.StatusOK, ScenarioDTO{
		ID:          current,
		Name:        current,
		Description: "Currently loaded scenario",
	})
}

// LoadScenario resets the database and loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	s, ok := findScenario(req.ScenarioID)
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	ctx := r.Context()

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""

	if err := s.load(h, ctx); err != nil {
		h.Logger.Error("scenario load failed", "scenario", s.ID, "error", err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}
	h.currentScenario = s.ID
	h.Logger.Info("scenario loaded", "scenario", s.ID)

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": s.ID})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

// Expected history with today in June 2024 (newest first):
//
//	June..April 2024   1800.00
//	March 2024         1500.00
//	February 2024      1446.43 (one Not Done day, 1500/28 deducted)
//	January 2024        822.58 (17 of 31 days)
func (h *Handler) loadEndToEndScenario(ctx context.Context) error {
	if err := h.addRates(ctx,
		rate{"1500", 2024, time.January, 1},
		rate{"1800", 2024, time.April, 1},
	); err != nil {
		return err
	}

	emp := demoEmployee("emp-ayesha", "1", "Ayesha Perera", "15/01/2024")
	if err := h.Service.SaveEmployee(ctx, emp); err != nil {
		return err
	}
	return h.recordDays(ctx, emp.ID,
		day{generic.NewTimePoint(2024, time.February, 10), payroll.StatusNotDone, ""},
		day{generic.NewTimePoint(2024, time.February, 12), payroll.StatusFullCompleted, ""},
	)
}

// June 2024 at 3000 pays 21 of 30 days: 2100.00.
func (h *Handler) loadMidMonthJoinerScenario(ctx context.Context) error {
	if err := h.addRates(ctx, rate{"3000", 2024, time.January, 1}); err != nil {
		return err
	}

	emp := demoEmployee("emp-nimal", "2", "Nimal Silva", "10/06/2024")
	if err := h.Service.SaveEmployee(ctx, emp); err != nil {
		return err
	}
	return h.recordDays(ctx, emp.ID,
		day{generic.NewTimePoint(2024, time.June, 11), payroll.StatusHalfDone, "Left at noon for a clinic visit"},
		day{generic.NewTimePoint(2024, time.June, 18), payroll.StatusHalfDone, "Site visit in the afternoon"},
		day{generic.NewTimePoint(2024, time.July, 3), payroll.StatusNotDone, ""},
	)
}

// Kamal joins 20 February at 2900 (100 a day): gross 1000, but 15 Not Done
// days recorded earlier in the month take 1500, so February nets -500.
// The company February total is Saman's 2900.00 only.
func (h *Handler) loadNegativeNetScenario(ctx context.Context) error {
	if err := h.addRates(ctx, rate{"2900", 2024, time.January, 1}); err != nil {
		return err
	}

	kamal := demoEmployee("emp-kamal", "3", "Kamal Fernando", "20/02/2024")
	saman := demoEmployee("emp-saman", "4", "Saman Jayasuriya", "01/02/2024")
	for _, emp := range []payroll.Employee{kamal, saman} {
		if err := h.Service.SaveEmployee(ctx, emp); err != nil {
			return err
		}
	}

	var missed []day
	for d := 1; d <= 15; d++ {
		missed = append(missed, day{generic.NewTimePoint(2024, time.February, d), payroll.StatusNotDone, ""})
	}
	return h.recordDays(ctx, kamal.ID, missed...)
}

func (h *Handler) loadRosterScenario(ctx context.Context) error {
	if err := h.addRates(ctx,
		rate{"1200", 2023, time.July, 1},
		rate{"1350", 2024, time.January, 15},
	); err != nil {
		return err
	}

	employees := []payroll.Employee{
		demoEmployee("emp-dilani", "5", "Dilani Wickramasinghe", "01/07/2023"),
		demoEmployee("emp-ruwan", "6", "Ruwan Bandara", "5/3/2024"),
		demoEmployee("emp-tharushi", "7", "Tharushi Gunawardena", "20/11/2023"),
		demoEmployee("emp-unknown", "8", "Pending Paperwork", "2024-02-01"),
	}
	employees[0].BankHolderName = "D. Wickramasinghe"
	employees[0].AccountNumber = "001234567890"
	employees[0].BankName = "Commercial Bank"

	for _, emp := range employees {
		if err := h.Service.SaveEmployee(ctx, emp); err != nil {
			return err
		}
	}
	return h.recordDays(ctx, "emp-tharushi",
		day{generic.NewTimePoint(2023, time.December, 26), payroll.StatusNotDone, ""},
		day{generic.NewTimePoint(2024, time.January, 2), payroll.StatusHalfDone, "Dentist"},
	)
}

// =============================================================================
// HELPERS
// =============================================================================

type rate struct {
	amount string
	year   int
	month  time.Month
	day    int
}

type day struct {
	date    generic.TimePoint
	status  payroll.AttendanceStatus
	details string
}

func (h *Handler) addRates(ctx context.Context, rates ...rate) error {
	for _, r := range rates {
		effective := generic.NewTimePoint(r.year, r.month, r.day)
		if _, err := h.Service.AddSalaryChange(ctx, decimal.RequireFromString(r.amount), effective); err != nil {
			return fmt.Errorf("salary change %s from %s: %w", r.amount, effective, err)
		}
	}
	return nil
}

func (h *Handler) recordDays(ctx context.Context, employeeID string, days ...day) error {
	for _, d := range days {
		if _, err := h.Service.RecordAttendance(ctx, employeeID, d.date, d.status, d.details); err != nil {
			return fmt.Errorf("attendance %s for %s: %w", d.date, employeeID, err)
		}
	}
	return nil
}

func demoEmployee(id, indexNo, name, joined string) payroll.Employee {
	return payroll.Employee{
		ID:             id,
		IndexNo:        indexNo,
		FullName:       name,
		JoiningDate:    joined,
		IDNumber:       fmt.Sprintf("19900%s12345V", indexNo),
		WhatsappNumber: fmt.Sprintf("+94 77 000 000%s", indexNo),
		Address:        "Colombo",
	}
}
