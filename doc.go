/*
Package whaletopo discovers the topology of containers on a single machine
and reconciles it with a previously known topology snapshot.

An analysis takes a configuration and a prior system snapshot (if any), and
returns a fresh system snapshot:

	result, err := whaletopo.Analyze(ctx, &model.Config{Name: "sys1"}, prior)

The configuration's docker filters are first augmented from the prior
snapshot, with the system's name and the names of its known container
definitions. Depending on the configured filter policy, these filters then
either exclude or select containers by name. When excluding, containers
whose names start with the system's name always stay, as they belong to the
system itself. The root machine node of the prior snapshot keeps its id,
defaulting to "10" otherwise. Then the analysis stages run strictly in order,
aborting on the first failure:

  - image discovery adds a container definition for each container image,
  - container discovery adds or updates a node for each alive container that
    survives the docker filters, placing it directly beneath the root machine
    node,
  - post-processing removes nodes of containers not seen anymore and fixes up
    the containment relations.

Node and definition ids are derived from container names and image ids
respectively, so that they stay stable across analysis runs.

# Container Engines

By default, the analysis talks to the Docker engine as configured by the usual
DOCKER_HOST et al. environment variables. Use [WithEngine] to pick a different
inspector engine plugin, such as "podman", or API endpoint.
*/
package whaletopo
