// Package services implements the driving port interfaces.
//
// IngestService loads and indexes benchmark documents, RetrievalService runs
// version-biased similarity search, and QueryService turns a question into an
// answer. Services depend only on driven ports, never on adapters.
package services
