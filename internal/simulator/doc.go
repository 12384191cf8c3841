// Package simulator runs a webotp.Bridge outside the browser.
//
// Platform stands in for navigator.credentials: pending requests are resolved
// by origin-bound SMS texts delivered over HTTP or consumed from a broker.
// Hub streams dispatched events as server-sent events and Publisher forwards
// them to a broker topic.
package simulator
