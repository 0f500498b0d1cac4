// Package rate throttles repeated failed logins from one IP with Redis
// fixed-window counters.
//
// # Window semantics
//
// INCR + EXPIRE on the first hit. The window starts at the first failure and
// a successful login clears it. Keys are <prefix>:lf:<ip>.
package rate
