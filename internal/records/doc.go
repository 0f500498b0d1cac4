// Package records holds the school dashboard data: students, courses and
// certificates. Everything lives in process memory and is lost on restart.
package records
