/*
Package postprocess provides the final analysis stage, reconciling the merged
topology before it is handed out.

Depending on the configured policy for missing nodes, container nodes of a
prior topology that weren't seen anymore get removed. References to
non-existing children are dropped, nodes with non-existing parents move
beneath the root machine node, and the children lists are brought in line with
the parent references. Finally, nodes without an IP address inherit the IP
address of their parent.
*/
package postprocess
