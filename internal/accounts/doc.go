// Package accounts wires the account store and the REST client into one
// service: eligibility queries for the sampler, fresh flag reads for the
// decision engine, and credential revalidation after auth failures.
package accounts
