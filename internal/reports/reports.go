// Package reports runs the fixed catalog of parameterized, multi-table
// aggregate queries shipped with the system. Templates are not derived
// from the schema; they target the booking domain the tool was built for.
package reports

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/dynoquery/dynoquery/internal/session"
	"github.com/dynoquery/dynoquery/pkg/models"
)

// ErrParamCount means the supplied parameters do not match the template's placeholders
var ErrParamCount = errors.New("parameter count mismatch")

const bookingsPerRouteSQL = `
	SELECT
		r.route_id,
		r.departurep,
		r.arrivalp,
		COUNT(b.booking_id) AS total_bookings
	FROM "route" r
	JOIN "booking" b ON b.route_id = r.route_id
	WHERE TO_DATE(b.bookingdate, 'DD.MM.YYYY') BETWEEN $1 AND $2
	GROUP BY r.route_id, r.departurep, r.arrivalp
	ORDER BY total_bookings DESC
	LIMIT 100`

const buyersAboveThresholdSQL = `
	SELECT
		bu.buyer_id,
		bu."Surname",
		COUNT(DISTINCT b.booking_id) AS total_bookings,
		COUNT(p.payment_id) AS payments_count,
		SUM(COALESCE(CAST(p.sum AS numeric), 0)) AS total_paid
	FROM "buyer" bu
	JOIN "booking" b ON b.buyer_id = bu.buyer_id
	LEFT JOIN "payment" p ON p.booking_id = b.booking_id
	WHERE CAST(p.sum AS numeric) >= $1
	GROUP BY bu.buyer_id, bu."Surname"
	HAVING SUM(COALESCE(CAST(p.sum AS numeric), 0)) > $2
	ORDER BY total_paid DESC
	LIMIT 100`

const avgPaymentsByRouteSQL = `
	SELECT
		r.route_id,
		r.departurep,
		r.arrivalp,
		COUNT(DISTINCT b.booking_id) AS bookings,
		SUM(COALESCE(CAST(p.sum AS numeric), 0)) AS total_sum,
		AVG(COALESCE(CAST(p.sum AS numeric), 0)) AS avg_payment
	FROM "route" r
	JOIN "booking" b ON b.route_id = r.route_id
	LEFT JOIN "payment" p ON p.booking_id = b.booking_id
	WHERE r.departurep ILIKE $1
	AND r.arrivalp ILIKE $2
	AND CAST(p.sum AS numeric) >= $3
	GROUP BY r.route_id, r.departurep, r.arrivalp
	ORDER BY avg_payment DESC
	LIMIT 100`

// Catalog returns the built-in report templates
func Catalog() []models.ReportTemplate {
	return []models.ReportTemplate{
		{Title: "Number of bookings for routes in a given date range", SQL: bookingsPerRouteSQL},
		{Title: "Buyers with payments exceeding a certain amount", SQL: buyersAboveThresholdSQL},
		{Title: "Average payments by route by departure/arrival filters", SQL: avgPaymentsByRouteSQL},
	}
}

// Runner executes report templates with positional parameters
type Runner struct {
	Session *session.Session
	Logger  *logrus.Logger
}

// NewRunner creates a report runner over the given session
func NewRunner(sess *session.Session, logger *logrus.Logger) *Runner {
	return &Runner{Session: sess, Logger: logger}
}

// Run executes a report template. The parameter count is checked against
// the template's placeholders before anything reaches the database.
func (r *Runner) Run(t models.ReportTemplate, params []interface{}) (models.ResultSet, error) {
	want := t.ParamCount()
	if len(params) != want {
		return models.ResultSet{}, fmt.Errorf("%w: report %q expects %d parameters, got %d",
			ErrParamCount, t.Title, want, len(params))
	}

	cols, rows, err := r.Session.Query(t.SQL, params...)
	if err != nil {
		return models.ResultSet{}, err
	}
	return models.ResultSet{Columns: cols, Rows: rows}, nil
}
