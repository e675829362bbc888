/*
Package discovery provides the analysis stages discovering container images
and alive containers using an [inspector.Inspector], and merging them into the
analysis result.

Images become container definitions of type “docker”, identified by an id
derived from the image's content-addressable ID. Containers become topology
nodes identified by an id derived from their names, so that recreated
containers keep their identity. All discovered containers are direct children
of the root machine node.
*/
package discovery
