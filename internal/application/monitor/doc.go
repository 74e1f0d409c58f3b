// Package monitor periodically probes the message store.
//
// The store monitor loads the store on a fixed interval, logs its status and
// records the store_up and messages_total gauges, so a corrupted or missing
// document shows up in metrics before a client request hits it.
package monitor
