/*
Package inspector defines the interface between the topology analysis and the
container runtimes it inspects for images and running containers.

Inspector engine plugins register themselves with this package's plugin group
and are instantiated by name using [New]. The sub-package “all” pulls in all
engine plugins supported out-of-the-box; the individual engine plugins live in
the other sub-packages, such as “moby” and “podman”.
*/
package inspector
