/*
Package filter maintains the docker filters of an analysis configuration and
matches container names against them.

[Derive] augments the docker filters of a configuration with the name of the
system as known from the prior snapshot, as well as the names of the docker
container definitions of that prior snapshot. Definition names starting with
the system's own name are never added, as these belong to the system's own
namespace and adding them would filter the system against itself.

A [Matcher] then decides which discovered containers survive, depending on the
configured filter mode (substring, prefix, or exact) and filter policy
(exclude or include).
*/
package filter
