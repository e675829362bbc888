/*
Package containerd provides the inspector engine plugin “containerd” for
containerd daemons, using containerd's native API.

All containerd namespaces get inspected, with the exception of Docker's
“moby” namespace. Containers outside the “default” namespace are named with
their namespace as a prefix, such as “k8s.io/1234…”.
*/
package containerd
