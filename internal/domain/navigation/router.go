// Package navigation modela el enrutado entre pantallas como una máquina de
// estados finita: (pantalla actual, evento) -> pantalla siguiente.
package navigation

import (
	"fmt"
	"slices"

	"github.com/jdmorgan/trading-portal/internal/domain"
)

// View pantalla con nombre.
type View string

const (
	ViewHome            View = "home"
	ViewHomeLegacy      View = "home-legacy"
	ViewLogin           View = "login"
	ViewRoleSelect      View = "role-select"
	ViewBuyerForm       View = "buyer-form"
	ViewSellerForm      View = "seller-form"
	ViewAdmin           View = "admin"
	ViewMemberDashboard View = "member-dashboard"
	ViewDatabaseTest    View = "database-test"
	ViewVerifyEmail     View = "verify-email"
	ViewNews            View = "news"
	ViewDisclaimer      View = "disclaimer"
	ViewFraudReport     View = "fraud-report"
)

var allViews = []View{
	ViewHome, ViewHomeLegacy, ViewLogin, ViewRoleSelect, ViewBuyerForm, ViewSellerForm,
	ViewAdmin, ViewMemberDashboard, ViewDatabaseTest, ViewVerifyEmail, ViewNews,
	ViewDisclaimer, ViewFraudReport,
}

// Valid indica si la vista existe.
func (v View) Valid() bool { return slices.Contains(allViews, v) }

// Event acción del usuario o resultado de una operación.
type Event string

const (
	EventGoHome          Event = "go_home"
	EventOpenLegacyHome  Event = "open_legacy_home"
	EventOpenLogin       Event = "open_login"
	EventSignedIn        Event = "signed_in"
	EventContinueAsGuest Event = "continue_as_guest"
	EventRegistered      Event = "registered"
	EventChooseBuyer     Event = "choose_buyer"
	EventChooseSeller    Event = "choose_seller"
	EventFormBack        Event = "form_back"
	EventFormSubmitted   Event = "form_submitted"
	EventOpenDashboard   Event = "open_dashboard"
	EventOpenAdmin       Event = "open_admin"
	EventOpenDiagnostics Event = "open_diagnostics"
	EventOpenNews        Event = "open_news"
	EventOpenDisclaimer  Event = "open_disclaimer"
	EventOpenFraudReport Event = "open_fraud_report"
	EventSignedOut       Event = "signed_out"
)

// Context estado de sesión relevante para decidir la transición.
type Context struct {
	SignedIn bool
	Admin    bool
}

type rule struct {
	from []View // nil = desde cualquier vista
	to   func(Context) (View, bool)
}

func always(v View) func(Context) (View, bool) {
	return func(Context) (View, bool) { return v, true }
}

func whenAdmin(v View) func(Context) (View, bool) {
	return func(c Context) (View, bool) { return v, c.Admin }
}

var forms = []View{ViewBuyerForm, ViewSellerForm}

var rules = map[Event]rule{
	EventGoHome:         {to: always(ViewHome)},
	EventOpenLegacyHome: {to: always(ViewHomeLegacy)},
	EventOpenLogin:      {to: always(ViewLogin)},
	EventSignedIn: {from: []View{ViewLogin, ViewVerifyEmail}, to: func(c Context) (View, bool) {
		if c.Admin {
			return ViewAdmin, true
		}
		return ViewMemberDashboard, c.SignedIn
	}},
	EventContinueAsGuest: {from: []View{ViewLogin, ViewHome, ViewHomeLegacy}, to: always(ViewRoleSelect)},
	EventRegistered:      {from: []View{ViewLogin}, to: always(ViewVerifyEmail)},
	EventChooseBuyer:     {from: []View{ViewRoleSelect, ViewMemberDashboard, ViewHome}, to: always(ViewBuyerForm)},
	EventChooseSeller:    {from: []View{ViewRoleSelect, ViewMemberDashboard, ViewHome}, to: always(ViewSellerForm)},
	EventFormBack: {from: forms, to: func(c Context) (View, bool) {
		if c.SignedIn {
			return ViewMemberDashboard, true
		}
		return ViewRoleSelect, true
	}},
	EventFormSubmitted: {from: forms, to: always(ViewHome)},
	EventOpenDashboard: {to: func(c Context) (View, bool) {
		if c.Admin {
			return ViewAdmin, true
		}
		return ViewMemberDashboard, c.SignedIn
	}},
	EventOpenAdmin:       {to: whenAdmin(ViewAdmin)},
	EventOpenDiagnostics: {to: whenAdmin(ViewDatabaseTest)},
	EventOpenNews:        {to: always(ViewNews)},
	EventOpenDisclaimer:  {to: always(ViewDisclaimer)},
	EventOpenFraudReport: {to: always(ViewFraudReport)},
	EventSignedOut:       {to: always(ViewHome)},
}

// Transition calcula la siguiente vista. Devuelve domain.ErrInvalidTransition
// si la vista o el evento son desconocidos o el evento no aplica en ese estado.
func Transition(current View, ev Event, c Context) (View, error) {
	if !current.Valid() {
		return current, fmt.Errorf("vista %q: %w", current, domain.ErrInvalidTransition)
	}
	r, ok := rules[ev]
	if !ok {
		return current, fmt.Errorf("evento %q: %w", ev, domain.ErrInvalidTransition)
	}
	if r.from != nil && !slices.Contains(r.from, current) {
		return current, fmt.Errorf("%s --%s-->: %w", current, ev, domain.ErrInvalidTransition)
	}
	next, ok := r.to(c)
	if !ok {
		return current, fmt.Errorf("%s --%s--> sin permisos: %w", current, ev, domain.ErrInvalidTransition)
	}
	return next, nil
}
