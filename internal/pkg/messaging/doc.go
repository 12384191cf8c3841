// Package messaging hides the broker behind a small Publisher/Subscriber API.
//
// Supported drivers are NATS, Kafka, NSQ, Google Pub/Sub and an in-process
// memory broker used for local runs and tests.
package messaging
