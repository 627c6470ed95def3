// Package inmemorytopology provides a thread-safe, in-memory implementation
// of the dag.Graph interface. It is designed for scenarios where the graph
// topology can fit comfortably in memory and does not require persistent storage.
package inmemorytopology
