package server

// clientScript connects the page to /ws. It replaces the app markup on
// render frames and turns clicks on [data-action] elements into action
// frames.
const clientScript = `(function(){
var app=document.getElementById("app");
var proto=location.protocol==="https:"?"wss://":"ws://";
var ws=new WebSocket(proto+location.host+"/ws");
ws.onmessage=function(e){
var f=JSON.parse(e.data);
if(f.type==="render"){app.innerHTML=f.html;}
else if(f.type==="error"){console.warn(f.code,f.message);}
};
document.addEventListener("click",function(e){
var el=e.target.closest("[data-action]");
if(!el||ws.readyState!==1){return;}
ws.send(JSON.stringify({type:"action",name:el.getAttribute("data-action")}));
});
setInterval(function(){if(ws.readyState===1){ws.send('{"type":"ping"}');}},30000);
})();`
