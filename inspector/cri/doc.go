/*
Package cri provides the inspector engine plugin “cri” for container engines
implementing the Kubernetes container runtime interface (CRI), such as CRI-O.

Containers managed by Kubernetes are named “namespace/pod/container”.
*/
package cri
